// Package auth injects request authentication into folded header and query
// parameter maps.
package auth

import (
	"encoding/base64"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
)

// AddToHeader is the api-key target that writes a header; any other value
// writes a query parameter.
const AddToHeader = "header"

// Apply mutates headers and params for the given auth type. Auth runs after
// explicit headers and params are folded in, so it overwrites entries with
// the same name. Missing credentials make it a no-op.
func Apply(headers, params map[string]string, authType model.AuthType, data model.AuthData) {
	switch authType {
	case model.AuthBearer:
		if data.Token != "" {
			headers["Authorization"] = "Bearer " + data.Token
		}
	case model.AuthBasic:
		if data.Username != "" && data.Password != "" {
			creds := data.Username + ":" + data.Password
			headers["Authorization"] = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
		}
	case model.AuthAPIKey:
		if data.Key == "" || data.Value == "" {
			return
		}
		if data.AddTo == AddToHeader {
			headers[data.Key] = data.Value
		} else {
			params[data.Key] = data.Value
		}
	}
}

// Resolve returns a copy of data with every field passed through resolve.
func Resolve(data model.AuthData, resolve func(string) string) model.AuthData {
	return model.AuthData{
		Token:    resolve(data.Token),
		Username: resolve(data.Username),
		Password: resolve(data.Password),
		Key:      resolve(data.Key),
		Value:    resolve(data.Value),
		AddTo:    data.AddTo,
	}
}
