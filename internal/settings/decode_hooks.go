package settings

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/gikkon/internal/backend"
	pathutils "github.com/temirov/gikkon/internal/utils/path"
)

// ExpandedPathDecodeHook expands ~ in string values decoded into ExpandedPath fields.
func ExpandedPathDecodeHook(expander *pathutils.HomeExpander) mapstructure.DecodeHookFuncType {
	expandedPathType := reflect.TypeOf(ExpandedPath(""))
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != expandedPathType || sourceType.Kind() != reflect.String {
			return data, nil
		}
		return ExpandedPath(expander.Expand(strings.TrimSpace(reflect.ValueOf(data).String()))), nil
	}
}

// BackendKindDecodeHook parses backend kinds case-insensitively and rejects unknown values.
func BackendKindDecodeHook() mapstructure.DecodeHookFuncType {
	kindType := reflect.TypeOf(backend.Kind(""))
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != kindType || sourceType.Kind() != reflect.String {
			return data, nil
		}
		rawValue := reflect.ValueOf(data).String()
		return ParseBackendKind(rawValue)
	}
}

// ParseBackendKind converts a configuration value to a backend.Kind. Blank values select the CLI backend.
func ParseBackendKind(rawValue string) (backend.Kind, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	switch backend.Kind(normalizedValue) {
	case "":
		return backend.KindCLI, nil
	case backend.KindCLI, backend.KindLibrary:
		return backend.Kind(normalizedValue), nil
	default:
		return "", ConfigurationError{Key: generalKey(backendKeyConstant), Value: rawValue, Err: ErrUnsupportedBackend}
	}
}
