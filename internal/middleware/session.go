package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SessionCookieName is the browser-session cookie that identifies a visitor's stored values.
const SessionCookieName = "CLUBWEB_SESSION"

// SessionData is the signed cookie payload. Gallery orders live server side under ID.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	// internal dirty flag; not serialized
	dirty bool
}

// MarkDirty flags the session for writing before the response is sent.
func (s *SessionData) MarkDirty() { s.dirty = true }

// Sessions encodes the session cookie with securecookie.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
	logger *zap.Logger
	now    func() time.Time
}

// NewSessions builds the cookie codec. A nil hash key generates a process-ephemeral one,
// so sessions reset on restart.
func NewSessions(hashKey, blockKey []byte, secure bool, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		logger.Warn("session: using ephemeral signing key; set CLUBWEB_SESSION_HASH_KEY for production")
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Sessions{codec: codec, secure: secure, logger: logger, now: time.Now}
}

// Handler loads or starts the session and stores it in the request context.
func (m *Sessions) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := m.read(r)
		if sd.ID == "" {
			sd = &SessionData{ID: ulid.Make().String(), CreatedAt: m.now().UTC(), dirty: true}
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)

		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				m.write(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// nothing written yet (e.g. empty 200)
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			m.write(w, sd)
		}
	})
}

func (m *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := m.codec.Decode(SessionCookieName, c.Value, &sd); err != nil {
		m.logger.Debug("session cookie rejected", zap.Error(err))
		return &SessionData{}, false
	}
	return &sd, true
}

func (m *Sessions) write(w http.ResponseWriter, sd *SessionData) {
	encoded, err := m.codec.Encode(SessionCookieName, sd)
	if err != nil {
		m.logger.Error("session cookie encode failed", zap.Error(err))
		return
	}
	sd.dirty = false
	// No Expires/MaxAge: the cookie ends with the browser session.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSession returns session data from context, or an empty session when the middleware
// did not run.
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok && sd != nil {
		return sd
	}
	return &SessionData{}
}

// SessionID is shorthand for GetSession(r).ID.
func SessionID(r *http.Request) string { return GetSession(r).ID }
