// Package validator checks a relx configuration and reports the findings.
//
// Findings are [Issue] values collected in a [Result]. Errors make a
// configuration unusable, warnings point at a run that will probably fail
// (a missing GitHub token, for example), and info entries describe what
// relx will do.
//
//	result := validator.CheckConfig(cfg, validator.Environment{Vars: env})
//	_ = validator.NewReporter(os.Stdout, validator.FormatText).Report(result)
//	if result.HasErrors() {
//		// exit 1
//	}
package validator
