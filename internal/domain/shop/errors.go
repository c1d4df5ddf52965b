package shop

import "errors"

// Domain errors for shop demands and market sources

var (
	// ErrInvalidAmount is returned when a demand is created with a non-positive amount
	ErrInvalidAmount = errors.New("invalid demand amount")

	// ErrInvalidBaseStock is returned when a baseline stock is negative
	ErrInvalidBaseStock = errors.New("invalid base stock")

	// ErrInvalidTolerance is returned when a stock tolerance is negative
	ErrInvalidTolerance = errors.New("invalid stock tolerance")

	// ErrInvalidItem is returned when an item has no id or name
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidOperation is returned when an operation is neither BUY nor SELL
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidMarketKind is returned when a market kind is unknown
	ErrInvalidMarketKind = errors.New("invalid market kind")

	// ErrInvalidTransition is returned when a fulfillment state change is not allowed
	ErrInvalidTransition = errors.New("invalid fulfillment state transition")
)
