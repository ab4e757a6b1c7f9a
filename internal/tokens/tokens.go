package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/groupmail/groupmail-services/models"
)

const hashLen = 20

// Generator issues claim tokens bound to the state of the account that
// owns an email. A token stops validating once the account's ID, revision,
// primary email or active flag change, or once it is older than TTL.
type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGenerator returns a Generator signing with secret. A zero ttl means
// tokens never expire.
func NewGenerator(secret string, ttl time.Duration) (*Generator, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// MakeToken returns a token of the form "<timestamp>-<hash>".
func (g *Generator) MakeToken(owner *models.Account) (string, error) {
	if owner == nil {
		return "", errors.New("cannot make a token without an owner")
	}
	return g.makeToken(owner, g.now().Unix()), nil
}

// CheckToken reports whether token was issued for owner in its current
// state and has not expired.
func (g *Generator) CheckToken(owner *models.Account, token string) bool {
	if owner == nil {
		return false
	}

	tsPart, _, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	expected := g.makeToken(owner, ts)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return false
	}

	if g.ttl > 0 && g.now().Sub(time.Unix(ts, 0)) > g.ttl {
		return false
	}
	return true
}

func (g *Generator) makeToken(owner *models.Account, ts int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(owner.ID.String()))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(owner.Revision, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(owner.Email))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatBool(owner.IsActive)))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(ts, 10)))

	sum := hex.EncodeToString(mac.Sum(nil))
	return strconv.FormatInt(ts, 36) + "-" + sum[:hashLen]
}
