package fsops

// FakeDeleter implements Deleter for testing
// Records every delete call without touching the filesystem. Paths present
// in Fail return their mapped error, simulating in-use or permission
// failures on individual candidates.
type FakeDeleter struct {
	Calls []string
	Fail  map[string]error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, path)
	if err, ok := f.Fail[path]; ok {
		return err
	}
	return nil
}
