package interaction

import (
	"sync"

	"github.com/ElrondNetwork/elrond-exec-adapter/config"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ElrondNetwork/elrond-sdk/erdgo"
	"github.com/ElrondNetwork/elrond-sdk/erdgo/blockchain"
	"github.com/ElrondNetwork/elrond-sdk/erdgo/data"
)

var log = logger.GetOrCreate("interaction")

// BlockchainInteractor signs and sends transactions from the adapter's own account.
type BlockchainInteractor struct {
	proxyUrl   string
	chainID    string
	gasLimit   uint64
	gasPrice   uint64
	privateKey []byte
	account    *data.Account
	txMut      sync.Mutex
}

func NewBlockchainInteractor(chainInfo config.BlockchainInformation) (*BlockchainInteractor, error) {
	sk, pk, err := LoadSigningKey(chainInfo.PemPath)
	if err != nil {
		return nil, err
	}

	addressHandler, err := data.NewAddressFromBech32String(pk)
	if err != nil {
		return nil, err
	}

	proxy := blockchain.NewElrondProxy(chainInfo.ProxyUrl, nil)
	account, err := proxy.GetAccount(addressHandler)
	if err != nil {
		return nil, err
	}

	log.Info("loaded signing account", "address", account.Address, "nonce", account.Nonce)
	return &BlockchainInteractor{
		proxyUrl:   chainInfo.ProxyUrl,
		chainID:    chainInfo.ChainID,
		gasLimit:   chainInfo.GasLimit,
		gasPrice:   chainInfo.GasPrice,
		privateKey: sk,
		account:    account,
	}, nil
}

// SignAndSend signs a transaction carrying value and inputData to receiver and broadcasts it.
// Nonce allocation and broadcast happen under one lock so concurrent submissions never
// reuse a nonce.
func (bi *BlockchainInteractor) SignAndSend(value string, inputData []byte, receiver string) (string, error) {
	bi.txMut.Lock()
	defer bi.txMut.Unlock()

	tx := &data.Transaction{
		Value:    value,
		RcvAddr:  receiver,
		Data:     inputData,
		Nonce:    bi.account.Nonce,
		SndAddr:  bi.account.Address,
		GasPrice: bi.gasPrice,
		GasLimit: bi.gasLimit,
		ChainID:  bi.chainID,
		Version:  1,
		Options:  0,
	}

	err := erdgo.SignTransaction(tx, bi.privateKey)
	if err != nil {
		log.Debug("failed signing transaction", "err", err.Error())
		return "", err
	}

	proxy := blockchain.NewElrondProxy(bi.proxyUrl, nil)
	txHash, err := proxy.SendTransaction(tx)
	if err != nil {
		log.Debug("failed sending transaction", "receiver", receiver, "err", err.Error())
		return "", err
	}

	log.Debug("sent transaction", "hash", txHash, "nonce", bi.account.Nonce)
	bi.account.Nonce++
	return txHash, nil
}

// Address is the bech32 address of the signing account.
func (bi *BlockchainInteractor) Address() string {
	return bi.account.Address
}
