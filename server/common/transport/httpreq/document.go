package httpreq

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var ErrNoData = errors.New("no data provided")

// DecodeDocument decodes a JSON object body into out. An empty body, a null or an
// empty object all yield ErrNoData.
func DecodeDocument(r *http.Request, out any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || len(probe) == 0 {
		return ErrNoData
	}
	return json.Unmarshal(raw, out)
}
