package rules

// Import all rule subpackages to register them with the rule catalog.
import (
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules/data"
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules/pipeline"
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules/reproducibility"
)
