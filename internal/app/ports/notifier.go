package ports

// StateNotifier is the "state changed" seam for the presentation
// collaborator. It carries no payload; consumers re-read current state.
type StateNotifier interface {
	StateChanged()
}

// NopNotifier is the default when no presentation layer is attached.
type NopNotifier struct{}

func (NopNotifier) StateChanged() {}
