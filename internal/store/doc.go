// Package store declares the persistence contracts the services rely on:
// users, flashcard attempts, per-question slots and the question bank, plus
// the error values implementations must return.
//
// Stores are bound to a transaction with WithTx. A service opens the
// transaction through a Transactor and binds every store it touches to it.
package store
