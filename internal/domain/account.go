package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Permission is the API key permission bitmask reported in the account profile.
type Permission int64

const (
	PermissionReadInfo Permission = 1 << iota
	PermissionTrade
	PermissionWithdraw
)

var permissionNames = []struct {
	perm Permission
	name string
}{
	{PermissionReadInfo, "read_info"},
	{PermissionTrade, "trade"},
	{PermissionWithdraw, "withdraw"},
}

// Has reports whether every bit of p is set.
func (m Permission) Has(p Permission) bool {
	return m&p == p
}

// String lists the set bits, e.g. "read_info|trade".
func (m Permission) String() string {
	var names []string
	for _, pn := range permissionNames {
		if m.Has(pn.perm) {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Profile account profile.
type Profile struct {
	Username             string
	TradePasswordEnabled bool
	OTPEnabled           bool
	TradeFee             decimal.Decimal
	TradeFeeCNYLTC       decimal.Decimal
	TradeFeeBTCLTC       decimal.Decimal
	DailyBTCLimit        decimal.Decimal
	DailyLTCLimit        decimal.Decimal
	BTCDepositAddress    string
	BTCWithdrawalAddress string
	LTCDepositAddress    string
	LTCWithdrawalAddress string
	APIKeyPermission     Permission
}

// Assets per-currency amounts.
type Assets struct {
	BTC Amount
	LTC Amount
	CNY Amount
}

// AccountInfo result of getAccountInfo.
type AccountInfo struct {
	Profile Profile
	Balance Assets
	Frozen  Assets
}

// ParseAccountInfo parses the result of getAccountInfo.
func ParseAccountInfo(data []byte) (AccountInfo, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return AccountInfo{}, err
	}

	profileObj, err := obj.object("profile")
	if err != nil {
		return AccountInfo{}, err
	}
	profile, err := parseProfile(profileObj)
	if err != nil {
		return AccountInfo{}, err
	}

	balance, err := parseAssets(obj, "balance")
	if err != nil {
		return AccountInfo{}, err
	}
	frozen, err := parseAssets(obj, "frozen")
	if err != nil {
		return AccountInfo{}, err
	}

	return AccountInfo{Profile: profile, Balance: balance, Frozen: frozen}, nil
}

func parseAssets(parent object, name string) (Assets, error) {
	obj, err := parent.object(name)
	if err != nil {
		return Assets{}, err
	}

	var assets Assets
	for _, slot := range []struct {
		key string
		dst *Amount
	}{
		{"btc", &assets.BTC},
		{"ltc", &assets.LTC},
		{"cny", &assets.CNY},
	} {
		amountObj, err := obj.object(slot.key)
		if err != nil {
			return Assets{}, err
		}
		if *slot.dst, err = parseAmount(amountObj); err != nil {
			return Assets{}, err
		}
	}

	return assets, nil
}

func parseProfile(obj object) (Profile, error) {
	var (
		p   Profile
		err error
	)

	if p.Username, err = obj.string("username"); err != nil {
		return Profile{}, err
	}
	permission, err := obj.int64("api_key_permission")
	if err != nil {
		return Profile{}, err
	}
	p.APIKeyPermission = Permission(permission)

	if p.TradePasswordEnabled, err = obj.optionalBool("trade_password_enabled"); err != nil {
		return Profile{}, err
	}
	if p.OTPEnabled, err = obj.optionalBool("otp_enabled"); err != nil {
		return Profile{}, err
	}

	decimals := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"trade_fee", &p.TradeFee},
		{"trade_fee_cnyltc", &p.TradeFeeCNYLTC},
		{"trade_fee_btcltc", &p.TradeFeeBTCLTC},
		{"daily_btc_limit", &p.DailyBTCLimit},
		{"daily_ltc_limit", &p.DailyLTCLimit},
	}
	for _, d := range decimals {
		if *d.dst, err = obj.optionalDecimal(d.key); err != nil {
			return Profile{}, err
		}
	}

	addresses := []struct {
		key string
		dst *string
	}{
		{"btc_deposit_address", &p.BTCDepositAddress},
		{"btc_withdrawal_address", &p.BTCWithdrawalAddress},
		{"ltc_deposit_address", &p.LTCDepositAddress},
		{"ltc_withdrawal_address", &p.LTCWithdrawalAddress},
	}
	for _, a := range addresses {
		if *a.dst, err = obj.optionalString(a.key); err != nil {
			return Profile{}, err
		}
	}

	return p, nil
}
