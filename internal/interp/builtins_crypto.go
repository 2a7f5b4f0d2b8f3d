package interp

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
)

func init() {
	register("digest", biDigest)
}

// digest concatenates the canonical string form of every argument
// (recursing into arrays/objects via JSON text) and returns the base64
// encoding of its SHA-256 hash.
func biDigest(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	h := sha256.New()
	for _, a := range args {
		h.Write([]byte(stringify(a)))
	}
	return jsonvalue.Str(base64.StdEncoding.EncodeToString(h.Sum(nil))), nil
}
