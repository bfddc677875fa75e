package walletgen

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"investment-ledger/internal/core/domain"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetBySymbol(t *testing.T, symbol string) domain.Asset {
	t.Helper()
	for _, a := range domain.Assets {
		if a.Symbol == symbol {
			return a
		}
	}
	t.Fatalf("asset %s not listed", symbol)
	return domain.Asset{}
}

// keyOne is the secp256k1 scalar 1, whose addresses are well known.
func keyOne() []byte {
	k := make([]byte, 32)
	k[31] = 1
	return k
}

func TestWalletFromSeed_KnownVectors(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"ETH", "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"},
		{"BTC", "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"},
		{"TRX", "TMVQGm1qAQYVdetCeGRRkTWYYrLXuHK2HC"},
		{"XRP", "rBgGZ9tc4him9KBzD8fKFiQz3fSZpaSwMH"},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			w, err := walletFromSeed(assetBySymbol(t, tt.symbol), keyOne())
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Address)
			assert.Equal(t, tt.symbol, w.ShortName)
			assert.Equal(t, hex.EncodeToString(keyOne()), w.PrivateKey)
		})
	}
}

func TestWalletFromSeed_AddressShapes(t *testing.T) {
	tests := []struct {
		symbol string
		prefix string
	}{
		{"USDT", "0x"},
		{"LTC", "L"},
		{"DOGE", "D"},
		{"TRX", "T"},
		{"XRP", "r"},
		{"ADA", "addr1"},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			w, err := walletFromSeed(assetBySymbol(t, tt.symbol), keyOne())
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(w.Address, tt.prefix), "got %s", w.Address)
		})
	}

	sol, err := walletFromSeed(assetBySymbol(t, "SOL"), keyOne())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(sol.Address), 32)
	assert.LessOrEqual(t, len(sol.Address), 44)
}

func TestWalletFromSeed_TronSharesEVMAccount(t *testing.T) {
	trx, err := walletFromSeed(assetBySymbol(t, "TRX"), keyOne())
	require.NoError(t, err)
	assert.Len(t, trx.Address, 34)
}

func TestWalletFromSeed_UnknownScheme(t *testing.T) {
	_, err := walletFromSeed(domain.Asset{Symbol: "XYZ", Name: "Unknown"}, keyOne())
	assert.Error(t, err)
}

func TestProvisioner_Generate(t *testing.T) {
	p := NewProvisioner()

	first, err := p.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, first, len(domain.Assets))

	second, err := p.Generate(context.Background())
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, w := range first {
		assert.Equal(t, domain.Assets[i].Symbol, w.ShortName)
		assert.Equal(t, domain.Assets[i].Name, w.CoinName)
		assert.NotEqual(t, second[i].Address, w.Address, "fresh keys per user")
		assert.False(t, seen[w.PrivateKey])
		seen[w.PrivateKey] = true
	}
}

func TestProvisioner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvisioner().Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBase58Check_Versions(t *testing.T) {
	h160, err := hex.DecodeString("751e76e8199196d454941c45d1b3a323f1433bd6")
	require.NoError(t, err)

	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", base58Check(0x00, h160))
	assert.Equal(t, "rBgGZ9tc4him9KBzD8fKFiQz3fSZpaSwMH", rippleCheck(0x00, h160))
}

func TestCardanoEnterprise_RoundTrips(t *testing.T) {
	ada, err := walletFromSeed(assetBySymbol(t, "ADA"), keyOne())
	require.NoError(t, err)

	hrp, words, err := bech32.Decode(ada.Address)
	require.NoError(t, err)
	assert.Equal(t, "addr", hrp)
	payload, err := bech32.ConvertBits(words, 5, 8, false)
	require.NoError(t, err)
	require.Len(t, payload, 29)
	assert.Equal(t, byte(0x61), payload[0], "mainnet enterprise header")
}
