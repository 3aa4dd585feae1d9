package repository

// CancelFunc stops a live subscription. Every Subscribe variant returns one;
// the caller owns it and must invoke it when the consumer goes away, otherwise
// the underlying store listener stays open for the life of the process.
type CancelFunc func()
