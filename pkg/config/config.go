// ------------------------------------------------------
// simjoin - Join Configuration
// ------------------------------------------------------

package config

import (
	"github.com/qgramjoin/simjoin/pkg/candidate"
	"github.com/qgramjoin/simjoin/pkg/joinerr"
)

// Version information
const (
	Version   = "1.0.0"
	BuildDate = "2026-08-03"
)

// Default join values
const (
	DefaultQVal        = 2
	DefaultLOutPrefix  = "l_"
	DefaultROutPrefix  = "r_"
	DefaultNJobs       = 1
	DefaultAPIPort     = 8080
	DefaultOutSimScore = true
)

// CompOp is the comparison operator applied to the verified edit
// distance between a pair's join attributes.
type CompOp string

const (
	CompLessEqual CompOp = "<="
	CompLess      CompOp = "<"
	CompEqual     CompOp = "="
)

var validCompOps = map[CompOp]struct{}{
	CompLessEqual: {},
	CompLess:      {},
	CompEqual:     {},
}

// ToCandidateOp translates the wire-level CompOp into the internal
// candidate.CompOp the enumerator understands.
func (op CompOp) ToCandidateOp() candidate.CompOp {
	switch op {
	case CompLess:
		return candidate.OpLess
	case CompEqual:
		return candidate.OpEqual
	default:
		return candidate.OpLessEqual
	}
}

// OutputFormat is the rendering format for a join's result table.
type OutputFormat string

const (
	OutputHuman OutputFormat = "human"
	OutputJSON  OutputFormat = "json"
	OutputCSV   OutputFormat = "csv"
)

var validOutputFormats = map[OutputFormat]struct{}{
	OutputHuman: {},
	OutputJSON:  {},
	OutputCSV:   {},
}

// LogLevel represents logging verbosity. The CLI records it from its
// --quiet and --verbose flags; the logrus level itself is set by the
// CLI's setupLogging from those flags, not from this field.
type LogLevel int

const (
	LogQuiet LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
)

// JoinConfig holds a join's column identifiers, predicate, and output
// options, plus the ambient options a runnable service needs (logging,
// output rendering, API).
type JoinConfig struct {
	// Column identifiers.
	LKeyAttr  string `json:"l_key_attr"`
	RKeyAttr  string `json:"r_key_attr"`
	LJoinAttr string `json:"l_join_attr"`
	RJoinAttr string `json:"r_join_attr"`

	// Join predicate.
	Threshold float64 `json:"threshold"`
	CompOp    CompOp  `json:"comp_op"`

	// Missing-value handling.
	AllowMissing bool `json:"allow_missing"`

	// Output projection.
	LOutAttrs   []string `json:"l_out_attrs"`
	ROutAttrs   []string `json:"r_out_attrs"`
	LOutPrefix  string   `json:"l_out_prefix"`
	ROutPrefix  string   `json:"r_out_prefix"`
	OutSimScore bool     `json:"out_sim_score"`

	// Execution.
	NJobs int `json:"n_jobs"`
	QVal  int `json:"qval"`

	// Ambient — not part of the core join contract.
	LogLevel   LogLevel     `json:"-"`
	Output     OutputFormat `json:"-"`
	OutputFile string       `json:"-"`
	EnableAPI  bool         `json:"-"`
	APIPort    int          `json:"-"`
	Quiet      bool         `json:"-"`
}

// DefaultConfig returns a JoinConfig with comp_op "<=", the standard
// l_/r_ out prefixes, and sensible ambient defaults.
func DefaultConfig() *JoinConfig {
	return &JoinConfig{
		CompOp:      CompLessEqual,
		LOutPrefix:  DefaultLOutPrefix,
		ROutPrefix:  DefaultROutPrefix,
		OutSimScore: DefaultOutSimScore,
		NJobs:       DefaultNJobs,
		QVal:        DefaultQVal,
		LogLevel:    LogWarn,
		Output:      OutputHuman,
		APIPort:     DefaultAPIPort,
	}
}

// Validate checks a JoinConfig's fields for internal consistency,
// raising the matching joinerr.Kind on the first violation found.
func (c *JoinConfig) Validate() error {
	if c.LKeyAttr == "" {
		return joinerr.New(joinerr.UnknownAttribute, "l_key_attr must be set")
	}
	if c.RKeyAttr == "" {
		return joinerr.New(joinerr.UnknownAttribute, "r_key_attr must be set")
	}
	if c.LJoinAttr == "" {
		return joinerr.New(joinerr.UnknownAttribute, "l_join_attr must be set")
	}
	if c.RJoinAttr == "" {
		return joinerr.New(joinerr.UnknownAttribute, "r_join_attr must be set")
	}

	if c.Threshold < 0 {
		return joinerr.New(joinerr.InvalidThreshold, "threshold must be non-negative, got %v", c.Threshold)
	}

	if _, ok := validCompOps[c.CompOp]; !ok {
		return joinerr.New(joinerr.InvalidComparisonOperator, "unknown comp_op %q, want one of <=, <, =", c.CompOp)
	}

	if c.QVal < 1 {
		return joinerr.New(joinerr.InvalidTokenizer, "qval must be at least 1, got %d", c.QVal)
	}

	if c.Output != "" {
		if _, ok := validOutputFormats[c.Output]; !ok {
			return joinerr.New(joinerr.InvalidInputTable, "unknown output format %q", c.Output)
		}
	}

	if c.EnableAPI && (c.APIPort < 1 || c.APIPort > 65535) {
		return joinerr.New(joinerr.InvalidInputTable, "api_port must be between 1 and 65535, got %d", c.APIPort)
	}

	return nil
}
