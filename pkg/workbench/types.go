package workbench

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ScanRecord is one row of the scan listing.
type ScanRecord struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ScanInfo is the full detail record for a single scan. Timestamp fields
// are kept as the server's strings; parsing happens at the point of use
// so an unparseable record can be skipped rather than dropped wholesale.
type ScanInfo struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	ProjectCode string  `json:"project_code"`
	Created     string  `json:"created"`
	Updated     string  `json:"updated"`
	IsArchived  APIBool `json:"is_archived"`
}

// ServerConfig is the server identity returned by the connectivity probe.
type ServerConfig struct {
	ServerName string `json:"server_name"`
	Version    string `json:"version"`
}

// APIBool tolerates the boolean encodings the Workbench API is known to
// emit: true/false, 0/1, and "0"/"1" strings.
type APIBool bool

func (b *APIBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = APIBool(v)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = APIBool(s != "" && s != "0" && s != "false")
		return nil
	default:
		n, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("cannot decode %q as bool", data)
		}
		*b = APIBool(n != 0)
		return nil
	}
}

// Bool returns the plain bool value.
func (b APIBool) Bool() bool {
	return bool(b)
}

// apiRequest is the verb-routed envelope every Workbench call uses.
type apiRequest struct {
	Group  string         `json:"group"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// apiResponse is the envelope every Workbench response uses. Data carries
// the action-specific payload and is decoded by the operation wrappers.
type apiResponse struct {
	Operation string          `json:"operation,omitempty"`
	Status    string          `json:"status,omitempty"`
	Data      json.RawMessage `json:"data"`
}
