package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StringToBigInt parses a base 10 integer or a 0x prefixed hex integer.
func StringToBigInt(str string) (*big.Int, error) {
	str = strings.TrimSpace(str)
	if strings.HasPrefix(str, "0x") {
		return hexutil.DecodeBig(str)
	}
	result, success := big.NewInt(0).SetString(str, 10)
	if !success {
		return nil, fmt.Errorf("parsed %s to big int failed", str)
	}
	return result, nil
}
