/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redact_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdfredact/pdfredact/internal/fixture"
)

func TestScenarios(t *testing.T) {
	scenarios, err := fixture.Load()
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			output, _, err := fixture.Run(s)
			require.NoError(t, err)
			if msg := s.Check(output); msg != "" {
				t.Fatalf("%s: %s\noutput:\n%s", s.Name, msg, output)
			}
		})
	}
}
