package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(DetectOutput{Input: "a.script", Brand: "Universal Robots", Model: "UR5e"})
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   DetectOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "UR5e", resp.Data.Model)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeNoCommands, "Nenhum comando encontrado", "no commands found")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E105", resp.Error.Code)
	assert.Equal(t, "Nenhum comando encontrado", resp.Error.Message)
	assert.Equal(t, "no commands found", resp.Error.Details)
}

func TestOutputFormatter_TextUsesTexter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(DetectOutput{}))
	assert.Equal(t, "no model detected\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E103", "Dados do robô não encontrados", "details hidden")
	require.NoError(t, err)
	assert.Equal(t, "Error [E103]: Dados do robô não encontrados\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E104", "Erro: decode ir", map[string]string{"file": "x.ruki"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E104]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: diag,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Detected model %s", "UR10e")

			assert.Empty(t, out.String(), "diagnostics never reach stdout")
			if tt.wantLog {
				assert.Equal(t, "Detected model UR10e\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to write", cause)
	assert.Equal(t, "failed to write: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}
