/*
File Name:  errors.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner
*/

package core

import "errors"

// Sentinel errors for the failure taxonomy the core must distinguish. Frame-level
// errors (Malformed, BadSignature, ReplayOrStale, AuthFailed, CryptoKeyMismatch) are
// logged and dropped by the layer that detects them; they are never returned to the
// caller. UnknownPeer is returned from Transport.Send. Config aborts construction.
var (
	ErrMalformed         = errors.New("malformed frame")
	ErrBadSignature      = errors.New("bad signature")
	ErrReplayOrStale     = errors.New("replay or stale sequence")
	ErrUnknownPeer       = errors.New("unknown peer")
	ErrCryptoKeyMismatch = errors.New("cryptographic key mismatch")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrChannelClosed     = errors.New("channel closed")
	ErrConfig            = errors.New("invalid configuration")
)
