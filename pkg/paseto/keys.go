package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"

	"github.com/Alijeyrad/mindcare_backend/config"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, encrypted
	ModePublic Mode = "public" // v4.public, signed
)

// Keys holds the key material for one Mode. In public mode Secret may be nil
// on verify-only deployments.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey
	Secret    *paseto.V4AsymmetricSecretKey
	Public    *paseto.V4AsymmetricPublicKey
}

// LoadKeys decodes the hex keys of the authentication.paseto section.
func LoadKeys(c config.PasetoConfig) (Keys, error) {
	switch Mode(c.Mode) {
	case ModeLocal:
		raw := strings.TrimSpace(c.LocalKeyHex)
		if raw == "" {
			return Keys{}, configError("local mode requires local_key_hex")
		}
		k, err := paseto.V4SymmetricKeyFromHex(raw)
		if err != nil {
			return Keys{}, configError("invalid local_key_hex: " + err.Error())
		}
		return Keys{Mode: ModeLocal, Symmetric: &k}, nil

	case ModePublic:
		out := Keys{Mode: ModePublic}
		if raw := strings.TrimSpace(c.SecretKeyHex); raw != "" {
			sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(raw)
			if err != nil {
				return Keys{}, configError("invalid secret_key_hex: " + err.Error())
			}
			pk := sk.Public()
			out.Secret, out.Public = &sk, &pk
		}
		if raw := strings.TrimSpace(c.PublicKeyHex); raw != "" {
			pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(raw)
			if err != nil {
				return Keys{}, configError("invalid public_key_hex: " + err.Error())
			}
			out.Public = &pk
		}
		if out.Public == nil {
			return Keys{}, configError("public mode requires secret_key_hex or public_key_hex")
		}
		return out, nil

	default:
		return Keys{}, configError("unknown mode " + c.Mode + " (use local|public)")
	}
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}
