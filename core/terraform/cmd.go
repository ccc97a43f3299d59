package terraform

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"plancost/internal/errors"
	"plancost/internal/logging"
)

// Binary returns the terraform executable to invoke, override with
// TERRAFORM_BINARY.
func Binary() string {
	if bin := os.Getenv("TERRAFORM_BINARY"); bin != "" {
		return bin
	}
	return "terraform"
}

// GeneratePlanJSON produces plan JSON for a Terraform project directory by
// running plan and show. The directory is initialized first when it has no
// .terraform state.
func GeneratePlanJSON(dir string) ([]byte, error) {
	if _, err := os.Stat(filepath.Join(dir, ".terraform")); os.IsNotExist(err) {
		if err := runTerraform(dir, nil, "init", "-input=false"); err != nil {
			return nil, err
		}
	}

	planFile, err := os.CreateTemp("", "plancost-*.tfplan")
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "creating plan file", err)
	}
	planPath := planFile.Name()
	planFile.Close()
	defer os.Remove(planPath)

	if err := runTerraform(dir, nil, "plan", "-input=false", "-lock=false", "-out="+planPath); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := runTerraform(dir, &out, "show", "-json", planPath); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ShowPlanJSON converts a binary plan file to plan JSON
func ShowPlanJSON(dir, planPath string) ([]byte, error) {
	var out bytes.Buffer
	if err := runTerraform(dir, &out, "show", "-json", planPath); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func runTerraform(dir string, stdout *bytes.Buffer, args ...string) error {
	logging.Debug("Running terraform", zap.Strings("args", args), zap.String("dir", dir))

	cmd := exec.Command(Binary(), args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(errors.TypeInput, err, "terraform %s failed", args[0])
	}
	return nil
}
