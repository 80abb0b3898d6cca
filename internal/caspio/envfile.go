package caspio

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// Env keys rewritten after a token refresh.
const (
	EnvAccessToken  = "CASPIO_ACCESS_TOKEN"
	EnvRefreshToken = "CASPIO_REFRESH_TOKEN"
)

// SaveTokens writes the token pair into the dotenv file at path, keeping every
// other key. A missing file is created. An empty refresh token leaves the
// stored one in place.
func SaveTokens(path string, token *TokenResponse) error {
	if token == nil || token.AccessToken == "" {
		return errors.New("caspio: no access token to save")
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		env = map[string]string{}
	}
	env[EnvAccessToken] = token.AccessToken
	if token.RefreshToken != "" {
		env[EnvRefreshToken] = token.RefreshToken
	}
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
