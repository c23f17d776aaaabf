// Package rules provides the ML smell rule implementations for mlsmell.
//
// Rules are organized by category:
//   - reproducibility: results that cannot be reproduced (W9001-W9002)
//   - pipeline: training and serving code mixed together (W9003)
//   - data: silent data loss (W9004)
//
// To register all rules with the rule catalog, import this package with a
// blank identifier:
//
//	import _ "github.com/leapstack-labs/mlsmell/pkg/smell/rules"
//
// Individual categories can also be imported:
//
//	import _ "github.com/leapstack-labs/mlsmell/pkg/smell/rules/data"
package rules
