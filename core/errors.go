package core

import "errors"

// Sentinel errors for validate_transaction and check_transaction (§4.7,
// §7 axis 1: block-invalidating). A transaction failing any of these
// never reaches the interpreter — the block executor aborts and the
// caller rolls back to the pre-block snapshot.
var (
	ErrNonceTooLow           = errors.New("nonce too low")
	ErrNonceTooHigh          = errors.New("nonce too high")
	ErrNonceMax              = errors.New("nonce has max value")
	ErrInsufficientBalance   = errors.New("insufficient balance for transfer")
	ErrGasLimitExceeded      = errors.New("tx gas limit exceeds block gas remaining")
	ErrBlobGasLimitExceeded  = errors.New("tx blob gas exceeds block blob gas remaining")
	ErrIntrinsicGasTooLow    = errors.New("intrinsic gas too low")
	ErrTxGasLimitExceeded    = errors.New("tx gas limit exceeds per-transaction cap")
	ErrMaxInitCodeSizeExceeded = errors.New("max initcode size exceeded")
	ErrSenderNotEOA          = errors.New("sender is not an externally owned account")
	ErrTipAboveFeeCap        = errors.New("max priority fee per gas higher than max fee per gas")
	ErrFeeCapTooLow          = errors.New("max fee per gas less than block base fee")
	ErrBlobFeeCapTooLow      = errors.New("max fee per blob gas less than block blob base fee")
	ErrNoBlobs               = errors.New("blob transaction carries no blobs")
	ErrTooManyBlobs          = errors.New("blob transaction exceeds max blob count")
	ErrInvalidVersionedHash  = errors.New("blob versioned hash has invalid version byte")
	ErrBlobTxCreate          = errors.New("blob transactions cannot create contracts")
	ErrSetCodeTxCreate       = errors.New("set-code transactions cannot create contracts")
	ErrEmptyAuthorizationList = errors.New("set-code transaction carries an empty authorization list")
	ErrTxTypeNotSupported    = errors.New("transaction type not yet active")
	ErrInvalidSender         = errors.New("invalid transaction sender")
)
