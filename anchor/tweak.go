package anchor

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// LNPBP1Tag and ProtocolTag are the domain-separation strings LNPBP-1 mixes
// into the tweak factor alongside the message: apply LNPBP-1 to tweak the
// output's public key by HMAC-SHA256(LNPBP1-tag || protocol-tag || message, P).
const (
	LNPBP1Tag   = "LNPBP1"
	ProtocolTag = "RGB"
)

// ErrWrongPubkeyData is returned when a 33-byte compressed pubkey fails to
// parse as a valid secp256k1 point.
var ErrWrongPubkeyData = errors.New("anchor: malformed pubkey data")

// TweakingFactor computes HMAC-SHA256(LNPBP1-tag || protocol-tag || message, P)
// where P is the compressed pre-tweak pubkey. The factor is deterministic
// given (pubkey, message) alone — no implementation-dependent salt is
// introduced: HMAC here takes no input besides the tag strings, the
// pubkey, and the message.
func TweakingFactor(pubkeyCompressed [33]byte, message [32]byte) ([32]byte, error) {
	if _, err := secp256k1.ParsePubKey(pubkeyCompressed[:]); err != nil {
		return [32]byte{}, ErrWrongPubkeyData
	}
	mac := hmac.New(sha256.New, pubkeyCompressed[:])
	mac.Write([]byte(LNPBP1Tag))
	mac.Write([]byte(ProtocolTag))
	mac.Write(message[:])
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out, nil
}

// TweakPubkey applies the LNPBP-1 tweak to a compressed pubkey: P' = P + t*G
// where t is the tweaking factor. Returns the tweaked pubkey in compressed
// form.
func TweakPubkey(pubkeyCompressed [33]byte, message [32]byte) ([33]byte, error) {
	factor, err := TweakingFactor(pubkeyCompressed, message)
	if err != nil {
		return [33]byte{}, err
	}
	pub, err := secp256k1.ParsePubKey(pubkeyCompressed[:])
	if err != nil {
		return [33]byte{}, ErrWrongPubkeyData
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(factor[:])
	if overflow {
		return [33]byte{}, errors.New("anchor: tweaking factor overflows curve order")
	}

	var tG secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&scalar, &tG)

	var p secp256k1.JacobianPoint
	pub.AsJacobian(&p)

	var sum secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p, &tG, &sum)
	sum.ToAffine()

	tweaked := secp256k1.NewPublicKey(&sum.X, &sum.Y)
	var out [33]byte
	copy(out[:], tweaked.SerializeCompressed())
	return out, nil
}

// VerifyTweak reconstructs the tweaking factor from (preTweak, message) and
// asserts the on-chain scriptPubKey's pubkey equals the tweaked form.
func VerifyTweak(preTweak, onChain [33]byte, message [32]byte) (bool, error) {
	want, err := TweakPubkey(preTweak, message)
	if err != nil {
		return false, err
	}
	return want == onChain, nil
}
