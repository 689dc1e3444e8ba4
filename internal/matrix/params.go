// ABOUTME: Reflection over request struct tags to collect path and query parameters
// ABOUTME: Validates Matrix identifiers used as parameters before they reach a URL

package matrix

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"maunium.net/go/mautrix/id"
)

type params struct {
	path  map[string]string
	query url.Values
}

var (
	userIDType = reflect.TypeOf(id.UserID(""))
	roomIDType = reflect.TypeOf(id.RoomID(""))
)

// extractParams collects fields tagged path:"..." and query:"..." from a
// struct (or pointer to struct). Other values yield no parameters.
func extractParams(req any) (params, *SerializationError) {
	p := params{path: map[string]string{}, query: url.Values{}}

	v := reflect.ValueOf(req)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return p, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return p, nil
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if name, ok := field.Tag.Lookup("path"); ok {
			value, set, err := formatParam(v.Field(i))
			if err != nil {
				return p, &SerializationError{Field: name, Err: err}
			}
			if set {
				p.path[name] = value
			}
			continue
		}

		if name, ok := field.Tag.Lookup("query"); ok {
			value, set, err := formatParam(v.Field(i))
			if err != nil {
				return p, &SerializationError{Field: name, Err: err}
			}
			if set && value != "" {
				p.query.Set(name, value)
			}
		}
	}
	return p, nil
}

// formatParam renders a scalar field as a string. A nil pointer reports
// set=false so optional parameters are omitted entirely.
func formatParam(v reflect.Value) (string, bool, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false, nil
		}
		v = v.Elem()
	}

	if err := validateIdentifier(v); err != nil {
		return "", false, err
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true, nil
	default:
		return "", false, fmt.Errorf("unsupported parameter type %s", v.Type())
	}
}

func validateIdentifier(v reflect.Value) error {
	switch v.Type() {
	case userIDType:
		if _, _, err := id.UserID(v.String()).Parse(); err != nil {
			return fmt.Errorf("invalid user ID %q: %w", v.String(), err)
		}
	case roomIDType:
		return ValidateRoomID(id.RoomID(v.String()))
	}
	return nil
}

// ValidateRoomID checks the "!opaque:server" shape of a room ID. Room
// version 12 IDs carry no server part, so ":server" is optional.
func ValidateRoomID(roomID id.RoomID) error {
	s := string(roomID)
	if !strings.HasPrefix(s, "!") {
		return fmt.Errorf("invalid room ID %q: must start with '!'", s)
	}
	local, server, hasServer := strings.Cut(s[1:], ":")
	if local == "" || (hasServer && server == "") {
		return fmt.Errorf("invalid room ID %q: must have the form !opaque[:server]", s)
	}
	return nil
}
