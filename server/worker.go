package server

import (
	"errors"
	"fmt"

	"github.com/chazu/nick/vm"
)

var errWorkerStopped = errors.New("worker stopped")

// evalRequest represents a unit of work to be executed on the worker goroutine.
type evalRequest struct {
	fn   func(*vm.Interpreter) interface{}
	done chan evalResult
}

// evalResult holds the return value from an interpreter operation.
type evalResult struct {
	value interface{}
	err   error
}

// Worker serializes all interpreter access through a single goroutine.
// An Interpreter keeps per-run statistics and must not evaluate twice at
// once; LSP handlers run concurrently, so they go through the worker.
type Worker struct {
	interp   *vm.Interpreter
	requests chan evalRequest
	quit     chan struct{}
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(interp *vm.Interpreter) *Worker {
	w := &Worker{
		interp:   interp,
		requests: make(chan evalRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn on the interpreter, recovering from panics.
func (w *Worker) execute(fn func(*vm.Interpreter) interface{}) evalResult {
	var result evalResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(w.interp)
	}()
	return result
}

// Do submits fn for execution on the worker goroutine and blocks until it
// completes. Returns the result and any error (including panics).
func (w *Worker) Do(fn func(*vm.Interpreter) interface{}) (interface{}, error) {
	req := evalRequest{
		fn:   fn,
		done: make(chan evalResult, 1),
	}
	select {
	case <-w.quit:
		return nil, errWorkerStopped
	default:
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, errWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, errWorkerStopped
	}
}

// Stop shuts down the worker goroutine.
func (w *Worker) Stop() {
	close(w.quit)
}
