package usecase

import "errors"

var (
	// ErrNoSymbols は銘柄が1つも指定されていない場合に返されます。
	ErrNoSymbols = errors.New("at least one symbol is required")
	// ErrTooManySymbols は一度に指定できる銘柄数を超えた場合に返されます。
	ErrTooManySymbols = errors.New("too many symbols requested")
	// ErrInvalidRange は開始日が終了日より後の場合に返されます。
	ErrInvalidRange = errors.New("start date is after end date")
)
