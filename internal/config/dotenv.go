package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DotEnvLookup layers the process environment over the variables in path.
// A missing file yields plain os.LookupEnv.
func DotEnvLookup(path string) (LookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.LookupEnv, nil
		}
		return nil, err
	}
	return OverlayLookup(os.LookupEnv, values), nil
}

// OverlayLookup consults primary first and falls back to values.
func OverlayLookup(primary LookupFunc, values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if value, ok := primary(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	}
}
