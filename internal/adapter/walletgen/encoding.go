package walletgen

import (
	btcbase58 "github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

var rippleAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

// base58Check is the bitcoin-alphabet version byte, payload and 4-byte
// double-SHA256 checksum encoding.
func base58Check(version byte, payload []byte) string {
	return btcbase58.CheckEncode(payload, version)
}

// rippleCheck is base58Check over the ripple alphabet.
func rippleCheck(version byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+4)
	buf = append(buf, version)
	buf = append(buf, payload...)
	buf = append(buf, chainhash.DoubleHashB(buf)[:4]...)
	return base58.FastBase58EncodingAlphabet(buf, rippleAlphabet)
}

// bech32Bytes regroups b into padded 5-bit words and encodes them under hrp.
func bech32Bytes(hrp string, b []byte) (string, error) {
	words, err := bech32.ConvertBits(b, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, words)
}
