package mercadopago

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Event is the body of a webhook notification.
type Event struct {
	ID          FlexString `json:"id"`
	Type        string     `json:"type"`
	Action      string     `json:"action"`
	APIVersion  string     `json:"api_version"`
	LiveMode    bool       `json:"live_mode"`
	DateCreated string     `json:"date_created"`
	UserID      FlexString `json:"user_id"`
	Data        EventData  `json:"data"`
}

// EventData references the resource the notification is about.
type EventData struct {
	ID FlexString `json:"id"`
}

// FlexString accepts both JSON strings and numbers. The provider sends ids in
// either form depending on the API version.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
