package emcb

import (
	"math/rand"

	"github.com/nodebound/exmgraph/xcore"
)

// ModHash is the affine hash h(x) = (a*x + b) mod p used to assign each
// node a fresh processing order for one Curveball round.
type ModHash struct {
	a, ainv, b, p int64
}

// isPrime is a trial-division primality test, adequate for the modest
// prime moduli this module needs (bounded by node-count, not edge-count).
func isPrime(n int64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := int64(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// nextPrime returns the smallest prime strictly greater than numNodes.
func nextPrime(numNodes int64) int64 {
	p := numNodes + 1
	if p <= 2 {
		return 2
	}
	if p%2 == 0 {
		p++
	}
	for !isPrime(p) {
		p += 2
	}
	return p
}

// inverseMod returns a's multiplicative inverse modulo p, via the
// extended Euclidean algorithm.
func inverseMod(a, p int64) int64 {
	var t, newT int64 = 0, 1
	var r, newR int64 = p, a
	for newR != 0 {
		quot := r / newR
		t, newT = newT, t-quot*newT
		r, newR = newR, r-quot*newR
	}
	if t < 0 {
		t += p
	}
	return t
}

// NewModHash builds a ModHash from explicit parameters; a must be
// invertible mod p (which holds whenever p is prime and 0 < a < p).
func NewModHash(a, b, p int64) ModHash {
	return ModHash{a: a % p, ainv: inverseMod(a%p, p), b: b % p, p: p}
}

// RandomModHash draws a fresh random affine hash over [0, nextPrime(numNodes)).
func RandomModHash(rng *rand.Rand, numNodes int64) ModHash {
	p := nextPrime(numNodes)
	a := int64(1) + rng.Int63n(p-1)
	b := rng.Int63n(p)
	return NewModHash(a, b, p)
}

// IdentityModHash returns the hash under which every node maps to its
// own id, used on EM-CB's final round so output edges carry original
// node ids.
func IdentityModHash(numNodes int64) ModHash {
	p := nextPrime(numNodes)
	return NewModHash(1, 0, p)
}

// Hash returns h(node).
func (h ModHash) Hash(node xcore.NodeID) int64 {
	return (h.a*int64(node) + h.b) % h.p
}

// Invert returns the node id whose hash is hashed.
func (h ModHash) Invert(hashed int64) int64 {
	v := ((hashed - h.b) % h.p) * h.ainv % h.p
	if v < 0 {
		v += h.p
	}
	return v
}
