package evm

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Artifact is a compiled contract: hardhat (artifacts/**/X.json) or foundry (out/**/X.json)
type Artifact struct {
	ContractName string
	ABI          *abi.ABI
	Bytecode     []byte
}

type artifactJSON struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// LoadArtifact reads the artifact file at path
func LoadArtifact(path string) (*Artifact, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileRead, "%s: %v", path, err)
	}
	art, err := ParseArtifact(bs)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return art, nil
}

// ParseArtifact decodes the artifact json
func ParseArtifact(bs []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(bs, &raw); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		ContractName: raw.ContractName,
		ABI:          &parsed,
		Bytecode:     code,
	}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var str string
	if raw[0] == '{' {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, errors.WithStack(err)
		}
		str = obj.Object
	} else if err := json.Unmarshal(raw, &str); err != nil {
		return nil, errors.WithStack(err)
	}
	if !strings.HasPrefix(str, "0x") {
		str = "0x" + str
	}
	if str == "0x" {
		return nil, nil
	}
	code, err := hexutil.Decode(str)
	if err != nil {
		return nil, errors.Wrap(err, "bytecode (unlinked libraries?)")
	}
	return code, nil
}

// RequireMethods checks that the abi declares every named method
func RequireMethods(a *abi.ABI, names ...string) error {
	for _, name := range names {
		if _, has := a.Methods[name]; !has {
			return errors.Wrap(ErrMissingMethod, name)
		}
	}
	return nil
}
