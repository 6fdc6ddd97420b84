package ports

// WorkerGroup runs background goroutines that shutdown must wait for.
// Go must not block; fn runs on a new goroutine.
type WorkerGroup interface {
	Go(fn func())
}
