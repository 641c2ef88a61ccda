package fsops

// Deleter abstracts file removal
// Enables mocking in tests to prove dry-run and declined runs never delete
type Deleter interface {
	Remove(path string) error
}
