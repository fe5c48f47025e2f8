package common

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// only the read-only part of the ERC20 interface is needed here
const erc20abi = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
)

func GetERC20ABI() *abi.ABI {
	erc20ABIOnce.Do(func() {
		result, err := abi.JSON(strings.NewReader(erc20abi))
		if err != nil {
			panic(err)
		}
		erc20ABI = result
	})
	return &erc20ABI
}

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

func IsHexAddress(hex string) bool {
	return common.IsHexAddress(hex)
}
