package perforate

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPerforate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Perforate Suite")
}
