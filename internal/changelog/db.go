package changelog

import (
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

//go:embed db/changelog_urls.json
var staticDBContent []byte

// StaticDB returns the changelog URLs shipped with the binary.
var StaticDB = sync.OnceValue(func() map[string]string {
	urls := map[string]string{}
	if err := json.Unmarshal(staticDBContent, &urls); err != nil {
		log.Error().Err(err).Msg("Failed to parse embedded changelog database")
	}
	return urls
})

// RemoteDB is a changelog URL database fetched once per session from a
// remote location.
type RemoteDB struct {
	url  string
	http *retryablehttp.Client

	once sync.Once
	done chan struct{}
	urls map[string]string
}

// NewRemoteDB creates a database fetched from url. Nothing is requested
// until Prefetch or Lookup is called.
func NewRemoteDB(url string, client *retryablehttp.Client) *RemoteDB {
	return &RemoteDB{url: url, http: client, done: make(chan struct{})}
}

// Prefetch starts fetching in the background and returns immediately.
func (db *RemoteDB) Prefetch(ctx context.Context) {
	db.once.Do(func() {
		go func() {
			defer close(db.done)
			db.urls = db.fetch(ctx)
		}()
	})
}

// Lookup waits for the fetch to finish and returns the database, or nil
// when it could not be fetched.
func (db *RemoteDB) Lookup(ctx context.Context) map[string]string {
	db.Prefetch(ctx)
	select {
	case <-db.done:
		return db.urls
	case <-ctx.Done():
		return nil
	}
}

func (db *RemoteDB) fetch(ctx context.Context) map[string]string {
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, db.url, nil)
	if err != nil {
		log.Debug().Err(err).Str("url", db.url).Msg("Invalid remote changelog database URL")
		return nil
	}
	response, err := db.http.Do(request)
	if err != nil {
		log.Debug().Err(err).Str("url", db.url).Msg("Failed to fetch remote changelog database")
		return nil
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		log.Debug().Int("status", response.StatusCode).Str("url", db.url).Msg("Remote changelog database unavailable")
		return nil
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read remote changelog database")
		return nil
	}
	urls := map[string]string{}
	if err := json.Unmarshal(body, &urls); err != nil {
		log.Debug().Err(err).Msg("Failed to parse remote changelog database")
		return nil
	}
	log.Debug().Int("entries", len(urls)).Msg("Fetched remote changelog database")
	return urls
}
