package amount

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// EtherDecimals is the number of decimals of the native currency
const EtherDecimals = 18

// errors
var (
	ErrInvalidAmountFormat = errors.New("invalid amount format")
	ErrTooManyDecimals     = errors.New("too many decimals")
)

var zeroInt = big.NewInt(0)

// Amount is a token quantity in base units (wei for the native currency)
type Amount struct {
	*big.Int
}

func newAmount(value int64) *Amount {
	return &Amount{
		Int: big.NewInt(value),
	}
}

// NewAmount returns the amount holding a copy of v
func NewAmount(v *big.Int) *Amount {
	c := newAmount(0)
	if v != nil {
		c.Int.Set(v)
	}
	return c
}

// Zero returns a new zero amount
func Zero() *Amount {
	return newAmount(0)
}

// NewUnits returns i whole units of a token with the given decimals
func NewUnits(i uint64, decimals uint8) *Amount {
	c := newAmount(0)
	c.Int.SetUint64(i)
	c.Int.Mul(c.Int, pow10(decimals))
	return c
}

// Ether returns i ether in wei
func Ether(i uint64) *Amount {
	return NewUnits(i, EtherDecimals)
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// Clone returns the clonend value of it
func (am *Amount) Clone() *Amount {
	return NewAmount(am.Int)
}

// Add returns a + b (*immutable)
func (am *Amount) Add(b *Amount) *Amount {
	c := newAmount(0)
	c.Int.Add(am.Int, b.Int)
	return c
}

// Sub returns a - b (*immutable)
func (am *Amount) Sub(b *Amount) *Amount {
	c := newAmount(0)
	c.Int.Sub(am.Int, b.Int)
	return c
}

// MulC returns a * b (*immutable)
func (am *Amount) MulC(b int64) *Amount {
	c := newAmount(0)
	c.Int.Mul(am.Int, big.NewInt(b))
	return c
}

// DivC returns a / b (*immutable)
func (am *Amount) DivC(b int64) *Amount {
	c := newAmount(0)
	c.Int.Div(am.Int, big.NewInt(b))
	return c
}

// IsZero returns a == 0
func (am *Amount) IsZero() bool {
	return am.Int == nil || am.Int.Cmp(zeroInt) == 0
}

// IsPositive returns a > 0
func (am *Amount) IsPositive() bool {
	return am.Int != nil && am.Int.Sign() > 0
}

// Less returns a < b
func (am *Amount) Less(b *Amount) bool {
	return am.Int.Cmp(b.Int) < 0
}

// Equal checks that two values is same or not
func (am *Amount) Equal(b *Amount) bool {
	return am.Int.Cmp(b.Int) == 0
}

// Format returns the decimal string of the amount for a token with the given decimals
func (am *Amount) Format(decimals uint8) string {
	if am.IsZero() {
		return "0"
	}
	str := new(big.Int).Abs(am.Int).String()
	d := int(decimals)
	if d > 0 {
		if len(str) <= d {
			str = strings.Repeat("0", d-len(str)+1) + str
		}
		si := str[:len(str)-d]
		sf := strings.TrimRight(str[len(str)-d:], "0")
		if len(sf) > 0 {
			str = si + "." + sf
		} else {
			str = si
		}
	}
	if am.Int.Sign() < 0 {
		return "-" + str
	}
	return str
}

// ParseUnits parses a decimal string like "1000.5" into base units of a token with the given decimals
func ParseUnits(str string, decimals uint8) (*Amount, error) {
	str = strings.TrimSpace(str)
	ls := strings.SplitN(str, ".", 2)
	ip, fp := ls[0], ""
	if len(ls) == 2 {
		fp = ls[1]
		if len(fp) == 0 {
			return nil, errors.Wrap(ErrInvalidAmountFormat, str)
		}
	}
	if len(ip) == 0 {
		return nil, errors.Wrap(ErrInvalidAmountFormat, str)
	}
	if len(fp) > int(decimals) {
		return nil, errors.Wrapf(ErrTooManyDecimals, "%s has more than %d decimals", str, decimals)
	}
	digits := ip + fp + strings.Repeat("0", int(decimals)-len(fp))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, errors.Wrap(ErrInvalidAmountFormat, str)
		}
	}
	bi, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Wrap(ErrInvalidAmountFormat, str)
	}
	return &Amount{Int: bi}, nil
}

// Parse parses either a 0x-prefixed hex quantity in base units or a decimal string in whole units
func Parse(str string, decimals uint8) (*Amount, error) {
	str = strings.TrimSpace(str)
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		bi, ok := new(big.Int).SetString(str[2:], 16)
		if !ok || bi.Sign() < 0 {
			return nil, errors.Wrap(ErrInvalidAmountFormat, str)
		}
		return &Amount{Int: bi}, nil
	}
	return ParseUnits(str, decimals)
}

// MustParseUnits parses the amount and panics on a malformed string
func MustParseUnits(str string, decimals uint8) *Amount {
	am, err := ParseUnits(str, decimals)
	if err != nil {
		panic(err)
	}
	return am
}
