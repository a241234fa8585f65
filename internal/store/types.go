package store

// Storage is the local persistence the client keeps for itself:
// configuration values (backend URL, user id, defaults) and the last
// active session id so a new run can resume where the previous one left
// off. Sessions and artifacts themselves are owned by the remote store.
type Storage interface {
	SetConfig(key, value string) error
	GetConfig(key string) (string, error)

	SetLastSession(id string) error
	LastSession() (string, error)

	Close() error
}
