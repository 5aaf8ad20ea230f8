package campusvoice

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const sessionName = "campusvoice-session"

// middleware is a convenient type for declaring middlewares.
type middleware func(httprouter.Handle) httprouter.Handle

// contextKey is a type for storing values in each request context.
type contextKey string

// String returns a stringified context key.
func (k contextKey) String() string { return string(k) }

// ctxKeyClientKey is the context key holding the caller's client key.
var ctxKeyClientKey = contextKey("client_key")

// ctxClientKey is a helper func to fetch the client key from the context.
// It returns an empty string when no middleware stored one.
func ctxClientKey(ctx context.Context) string {
	v := ctx.Value(ctxKeyClientKey)
	if v != nil {
		return v.(string)
	}
	return ""
}

// withMiddlewares is a helper function to declare routes with middlewares
// more easily. The caller declares its routes in the body of the f function,
// calling f's argument on its httprouter.Handle to wrap them.
func withMiddlewares(f func(middleware), middlewares ...middleware) {
	wrapper := func(handle httprouter.Handle) httprouter.Handle {
		h := handle
		for i := len(middlewares) - 1; i >= 0; i-- {
			m := middlewares[i]
			h = m(h)
		}
		return h
	}

	f(wrapper)
}

// loadClientKeyMiddleware resolves the caller's client key and stores it in
// the request context. An explicit client_key query parameter wins;
// otherwise the key persisted in the session cookie is used, minting and
// saving a fresh one on first contact. The key is a voluntary convention,
// never a verified identity.
func (s *Server) loadClientKeyMiddleware() middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
			key := strings.TrimSpace(r.URL.Query().Get("client_key"))

			if key == "" {
				session, err := s.sessionStore.Get(r, sessionName)
				if err != nil {
					s.Logger.Debug().Err(err).Msg("Stale session cookie, minting a new one")
					session, _ = s.sessionStore.New(r, sessionName)
				}

				if v, ok := session.Values["client_key"].(string); ok && v != "" {
					key = v
				} else {
					key = "user_" + uuid.NewString()
					session.Values["client_key"] = key
					if err := session.Save(r, w); err != nil {
						s.Logger.Warn().Err(err).Msg("Failed to save session")
					}
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyClientKey, key)
			next(w, r.WithContext(ctx), p)
		})
	}
}
