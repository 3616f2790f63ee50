// Package mailview serves email HTML behind short-lived signed links.
// A request is authenticated by verifying the HS256 token in the URL, the
// email body is fetched from the remote content provider, and the response
// is memoized in an edge cache for as long as the token itself stays valid.
package mailview

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"mailview/cache"
	"mailview/pkg/mailer"
	"mailview/pkg/result"
	"mailview/pkg/token"
)

type Config struct {
	// Storage for cached responses.
	Cache cache.Provider
	// Client for the remote content provider.
	// A default production client is used if nil.
	Mailer *mailer.Client
	// API key for the content provider.
	APIKey string
	// Shared secret the link tokens are signed with.
	SigningSecret string
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

type Server struct {
	cache         cache.Provider
	mailer        *mailer.Client
	apiKey        string
	signingSecret string
	log           zerolog.Logger
}

// New creates a mailview server. Credentials are not validated here;
// they are checked on every request and a blank credential fails the
// request with a 500.
func New(config Config) *Server {
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}
	m := config.Mailer
	if m == nil {
		m = mailer.New()
	}
	return &Server{
		cache:         config.Cache,
		mailer:        m,
		apiKey:        config.APIKey,
		signingSecret: config.SigningSecret,
		log:           logger,
	}
}

// Router returns the HTTP surface: the single view route plus a fixed
// plain-text 404 for everything else, including method mismatches.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/", s.handleView)
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)
	return r
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	plainText(w, http.StatusNotFound, "Not Found")
}

// handleView runs the request pipeline. Each stage short-circuits on the
// first failure; a cache hit bypasses everything, including re-verification,
// since a stored entry is trusted for its full remaining lifetime.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	defer s.recover(w)

	key := r.URL.RequestURI()
	logger := s.getLogger(r).With().Str("key", key).Logger()

	if bytes, ok, err := s.cache.Get(key); err != nil {
		logger.Warn().Err(err).Msg("Error reading from cache")
	} else if ok {
		res, err := bytesToResponse(bytes)
		if err != nil {
			// corrupted entry, drop it and serve the request normally
			logger.Error().Err(err).Msg("Could not read cached response")
			s.cache.Purge(key)
		} else {
			logger.Trace().Msg("Cache hit and serving")
			defer res.Body.Close()
			copyHeadersTo(w.Header(), res.Header)
			w.Header().Add("Cache-Status", "Mailview; hit")
			w.WriteHeader(res.StatusCode)
			io.Copy(w, res.Body)
			return
		}
	}

	s.respond(w, logger, key, s.resolve(r))
}

// view is the payload of a successfully resolved request.
type view struct {
	html      string
	expiresAt int64
}

// resolve runs the post-cache-lookup stages: credential validation, token
// extraction, verification and the upstream fetch.
func (s *Server) resolve(r *http.Request) result.Result[view] {
	if strings.TrimSpace(s.apiKey) == "" || strings.TrimSpace(s.signingSecret) == "" {
		// never reveal which credential is missing
		return result.Fail[view](http.StatusInternalServerError, "Server misconfigured")
	}

	raw := strings.TrimSpace(r.URL.Query().Get("token"))
	if raw == "" {
		return result.Fail[view](http.StatusBadRequest, "Token not provided")
	}

	claims := token.Verify(raw, s.signingSecret)
	if !claims.IsOk() {
		return result.FailFrom[view](claims)
	}

	html := s.mailer.Fetch(r.Context(), claims.Value().EmailID, s.apiKey)
	if !html.IsOk() {
		return result.FailFrom[view](html)
	}

	return result.Ok(view{html: html.Value(), expiresAt: claims.Value().ExpiresAt})
}

// respond renders the pipeline result to the client and, for cacheable
// successes, schedules the cache write. The write runs detached; it must
// never delay the client-visible response or surface as a client error.
func (s *Server) respond(w http.ResponseWriter, logger zerolog.Logger, key string, res result.Result[view]) {
	if !res.IsOk() {
		logger.Debug().Int("status", res.Status()).Str("message", res.Message()).Msg("Pipeline failure")
		plainText(w, res.Status(), res.Message())
		return
	}

	v := res.Value()
	// the TTL is recomputed here rather than reused from verification,
	// since time has passed between the two
	ttl := remainingTTL(v.expiresAt, time.Now())
	directive := cacheControl(ttl)

	if ttl > 0 {
		bytes, err := responseToBytes(successResponse(v.html, directive))
		if err != nil {
			logger.Error().Err(err).Msg("Could not serialize response for cache")
		} else {
			expires := time.Now().Add(time.Duration(ttl) * time.Second)
			go func() {
				if err := s.cache.Put(key, expires, bytes); err != nil {
					logger.Error().Err(err).Msg("Could not write to cache")
					return
				}
				logger.Trace().Time("expiry", expires).Msg("Cache write")
			}()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", directive)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, v.html)
}

// recover turns panics in the handler into a generic upstream failure.
func (s *Server) recover(w http.ResponseWriter) {
	if err := recover(); err != nil {
		s.log.WithLevel(zerolog.PanicLevel).Interface("error", err).Msg("Panic in view handler")
		plainText(w, http.StatusBadGateway, "Failed to fetch email")
	}
}

// getLogger returns the logger from the request context.
// If no logger is found, it will return the server logger.
func (s *Server) getLogger(r *http.Request) *zerolog.Logger {
	logger := hlog.FromRequest(r)
	if logger.GetLevel() == zerolog.Disabled {
		return &s.log
	}
	return logger
}

func plainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// copyHeadersTo copies the headers from one http.Header to another.
func copyHeadersTo(dst, src http.Header) {
	for name, values := range src {
		for _, value := range values {
			dst.Set(name, value)
		}
	}
}
