package walletgen

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/btcsuite/btcd/btcec/v2"
	btcbase58 "github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address hashing, not a security primitive here
	"golang.org/x/crypto/sha3"
)

// scheme is how an asset's address is derived from fresh key material.
type scheme int

const (
	schemeEVM     scheme = iota // keccak of the secp256k1 key, EIP-55 checksummed
	schemeP2PKH                 // base58check hash160 of the compressed secp256k1 key
	schemeTron                  // base58check 0x41 + the EVM account bytes
	schemeRipple                // base58check hash160 in the ripple alphabet
	schemeSolana                // base58 ed25519 public key
	schemeCardano               // bech32 enterprise address over an ed25519 key
)

var p2pkhVersion = map[string]byte{
	"BTC":  0x00,
	"LTC":  0x30,
	"DOGE": 0x1e,
}

func schemeFor(a domain.Asset) (scheme, error) {
	if a.EVM {
		return schemeEVM, nil
	}
	switch a.Symbol {
	case "BTC", "LTC", "DOGE":
		return schemeP2PKH, nil
	case "TRX":
		return schemeTron, nil
	case "XRP":
		return schemeRipple, nil
	case "SOL":
		return schemeSolana, nil
	case "ADA":
		return schemeCardano, nil
	}
	return 0, fmt.Errorf("no address scheme for %s", a.Symbol)
}

// Provisioner implements ports.WalletProvisioner. Every call produces fresh
// keys for each configured asset.
type Provisioner struct {
	assets []domain.Asset
	rand   io.Reader
}

// NewProvisioner creates a provisioner for assets, or for every listed
// domain asset when none are given.
func NewProvisioner(assets ...domain.Asset) *Provisioner {
	if len(assets) == 0 {
		assets = domain.Assets
	}
	return &Provisioner{assets: assets, rand: rand.Reader}
}

func (p *Provisioner) Generate(ctx context.Context) ([]ports.GeneratedWallet, error) {
	out := make([]ports.GeneratedWallet, 0, len(p.assets))
	for _, a := range p.assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seed := make([]byte, 32)
		if _, err := io.ReadFull(p.rand, seed); err != nil {
			return nil, fmt.Errorf("read entropy: %w", err)
		}
		w, err := walletFromSeed(a, seed)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// walletFromSeed derives the address for a 32-byte secret. The secret is the
// secp256k1 scalar or the ed25519 seed depending on the chain.
func walletFromSeed(a domain.Asset, seed []byte) (ports.GeneratedWallet, error) {
	s, err := schemeFor(a)
	if err != nil {
		return ports.GeneratedWallet{}, err
	}

	var address string
	switch s {
	case schemeSolana, schemeCardano:
		pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
		if s == schemeSolana {
			address = btcbase58.Encode(pub)
		} else if address, err = cardanoEnterprise(pub); err != nil {
			return ports.GeneratedWallet{}, fmt.Errorf("%s address: %w", a.Symbol, err)
		}
	default:
		priv, _ := btcec.PrivKeyFromBytes(seed)
		pub := priv.PubKey()
		switch s {
		case schemeEVM:
			address = evmAddress(pub)
		case schemeP2PKH:
			address = base58Check(p2pkhVersion[a.Symbol], hash160(pub.SerializeCompressed()))
		case schemeTron:
			address = base58Check(0x41, evmAccount(pub))
		case schemeRipple:
			address = rippleCheck(0x00, hash160(pub.SerializeCompressed()))
		}
	}

	return ports.GeneratedWallet{
		CoinName:   a.Name,
		ShortName:  a.Symbol,
		Address:    address,
		PrivateKey: hex.EncodeToString(seed),
	}, nil
}

func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

func keccak256(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	return h.Sum(nil)
}

// evmAccount is the last 20 bytes of keccak256 over the uncompressed key without its 0x04 prefix.
func evmAccount(pub *btcec.PublicKey) []byte {
	return keccak256(pub.SerializeUncompressed()[1:])[12:]
}

func evmAddress(pub *btcec.PublicKey) string {
	lower := hex.EncodeToString(evmAccount(pub))
	digest := hex.EncodeToString(keccak256([]byte(lower)))

	var sb strings.Builder
	sb.WriteString("0x")
	for i, c := range lower {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			sb.WriteRune(c - 32)
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// cardanoEnterprise builds a mainnet enterprise (payment-key only) address.
func cardanoEnterprise(pub ed25519.PublicKey) (string, error) {
	h, err := blake2b.New(28, nil)
	if err != nil {
		return "", err
	}
	h.Write(pub)
	return bech32Bytes("addr", append([]byte{0x61}, h.Sum(nil)...))
}
