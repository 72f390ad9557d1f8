package models

import (
	"fmt"

	"github.com/ThinkiumGroup/go-common/math"
)

// ValidationError reports a field whose shape or range is unacceptable at
// construction time.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// KeyFormatError reports a malformed private key handed to Sign.
type KeyFormatError struct {
	msg string
}

func (e *KeyFormatError) Error() string { return e.msg }

// SignatureError reports a recovery or verification failure. VerifySignature
// swallows it into false; the direct consumers of recovery surface it.
type SignatureError struct {
	msg   string
	cause error
}

func (e *SignatureError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *SignatureError) Unwrap() error { return e.cause }

// ErrorStr is the diagnostic postfix carried by every fault this package
// raises. Each sub-lookup is guarded on its own so one failing property does
// not suppress the others.
func (tx *Transaction) ErrorStr() string {
	hashStr := "not available (unsigned)"
	if tx.IsSigned() {
		hashStr = tx.safeHashStr()
	}
	nonceStr, valueStr := "error", "error"
	if tx.inner != nil {
		nonceStr = fmt.Sprintf("%d", tx.inner.nonce())
		valueStr = math.BigIntForPrint(tx.inner.value())
	}
	hfStr := "error"
	if tx.conf != nil {
		hfStr = tx.conf.Fork.String()
	}
	return fmt.Sprintf("tx type=%d hash=%s nonce=%s value=%s signed=%t hf=%s",
		tx.Type(), hashStr, nonceStr, valueStr, tx.IsSigned(), hfStr)
}

func (tx *Transaction) safeHashStr() (s string) {
	defer func() {
		if recover() != nil {
			s = "error"
		}
	}()
	h := tx.Hash()
	return fmt.Sprintf("%x", h[:])
}

// errMsg annotates a fault message with the ErrorStr postfix.
func (tx *Transaction) errMsg(base string) string {
	return base + " (" + tx.ErrorStr() + ")"
}

func (tx *Transaction) validationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: tx.errMsg(fmt.Sprintf(format, args...))}
}

func (tx *Transaction) keyFormatError(format string, args ...interface{}) *KeyFormatError {
	return &KeyFormatError{msg: tx.errMsg(fmt.Sprintf(format, args...))}
}

func (tx *Transaction) signatureError(cause error, format string, args ...interface{}) *SignatureError {
	return &SignatureError{msg: tx.errMsg(fmt.Sprintf(format, args...)), cause: cause}
}
