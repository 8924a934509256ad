// Package policies declares the ports the rental service depends on.
package policies

//go:generate mockgen -destination=../mocks/policies.go -package=mocks carrental/internal/app/policies EventPublisher,ImageStore,Notifier,PaymentVerifier
