// Package vectorizer computes deterministic feature vectors for text.
//
// The Vectorizer replaces a learned embedding model with hand-engineered
// lexical features: length statistics, boolean content indicators, and
// fixed-vocabulary keyword, bigram and character frequencies. Determinism is
// the contract: identical text always produces a bit-identical vector, so
// retrieval behavior is reproducible across runs and restarts. The vocabulary
// comes from configuration and must stay stable while vectors built with it
// remain stored.
package vectorizer
