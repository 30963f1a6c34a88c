package factory

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment is a read-only source of configuration variables. The factory
// reads through this interface instead of the process environment directly,
// so tests can inject values without mutating global state.
type Environment interface {
	// Lookup returns the value for key and whether it was set.
	Lookup(key string) (string, bool)
}

// OSEnv reads from the process environment.
type OSEnv struct{}

// Lookup returns the process environment value for key.
func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed in-memory environment.
type MapEnv map[string]string

// Lookup returns the mapped value for key.
func (m MapEnv) Lookup(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

// ChainEnv consults each source in order and returns the first hit.
type ChainEnv []Environment

// Lookup returns the first value found across the chained sources.
func (c ChainEnv) Lookup(key string) (string, bool) {
	for _, env := range c {
		if value, ok := env.Lookup(key); ok {
			return value, true
		}
	}
	return "", false
}

// DotEnv loads a dotenv-format file into a MapEnv. The process environment
// is not touched; chain the result with OSEnv to give real variables
// precedence over the file.
func DotEnv(path string) (MapEnv, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return MapEnv(values), nil
}
