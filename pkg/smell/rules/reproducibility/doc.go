// Package reproducibility contains rules for ML code whose results depend on
// values that are not tracked or controlled: hyperparameters typed inline and
// random generators used before a seed is set.
package reproducibility
