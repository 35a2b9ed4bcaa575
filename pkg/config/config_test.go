package config_test

import (
	"testing"

	"github.com/qgramjoin/simjoin/pkg/candidate"
	"github.com/qgramjoin/simjoin/pkg/config"
)

// validConfig returns a JoinConfig with every field Validate requires
// the caller to supply, layered on top of DefaultConfig.
func validConfig() *config.JoinConfig {
	cfg := config.DefaultConfig()
	cfg.LKeyAttr = "id"
	cfg.RKeyAttr = "id"
	cfg.LJoinAttr = "name"
	cfg.RJoinAttr = "name"
	cfg.Threshold = 2
	return cfg
}

func TestValidConfigPassesValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected a fully-populated config to validate, got: %v", err)
	}
}

func TestValidateMissingKeyAttr(t *testing.T) {
	cfg := validConfig()
	cfg.LKeyAttr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing l_key_attr")
	}
}

func TestValidateMissingJoinAttr(t *testing.T) {
	cfg := validConfig()
	cfg.RJoinAttr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing r_join_attr")
	}
}

func TestValidateNegativeThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.Threshold = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative threshold")
	}
}

func TestValidateUnknownCompOp(t *testing.T) {
	cfg := validConfig()
	cfg.CompOp = "!="
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown comp_op")
	}
}

func TestValidateInvalidQVal(t *testing.T) {
	cfg := validConfig()
	cfg.QVal = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for qval=0")
	}
}

func TestValidateUnknownOutputFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Output = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestValidateInvalidAPIPort(t *testing.T) {
	cfg := validConfig()
	cfg.EnableAPI = true
	cfg.APIPort = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for api_port=0 when EnableAPI=true")
	}
}

func TestCompOpTranslationIsBijective(t *testing.T) {
	seen := map[candidate.CompOp]config.CompOp{}
	for _, op := range []config.CompOp{config.CompLessEqual, config.CompLess, config.CompEqual} {
		key := op.ToCandidateOp()
		if prior, ok := seen[key]; ok {
			t.Errorf("comp ops %q and %q both map to the same candidate.CompOp", prior, op)
		}
		seen[key] = op
	}
}
