package worker

// producerOperations cuts a block on every tick of the interval or when
// signaled, until shutdown.
func (w *Worker) producerOperations() {
	w.evHandler("worker: producerOperations: G started")
	defer w.evHandler("worker: producerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runCutBlockOperation()
			}
		case <-w.cutBlock:
			if !w.isShutdown() {
				w.runCutBlockOperation()
			}
		case <-w.shut:
			w.evHandler("worker: producerOperations: received shut signal")
			return
		}
	}
}

// runCutBlockOperation drains the mempool into a new block and publishes it.
// A panic here is not recovered: the chain can no longer be trusted, so the
// process is allowed to die.
func (w *Worker) runCutBlockOperation() {
	w.evHandler("worker: runCutBlockOperation: started")
	defer w.evHandler("worker: runCutBlockOperation: completed")

	block := w.state.CutBlock()

	w.evHandler("viewer: block[%d]: ops[%d]", block.ID, len(block.Operations))
}
