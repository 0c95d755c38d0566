package session

// Repo stores live console sessions keyed by session ID.
type Repo interface {
	Upsert(session *Session) error
	Get(sessionID string) (*Session, error)
	Delete(sessionID string) error
}
