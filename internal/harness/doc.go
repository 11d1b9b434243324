// Package harness runs conversion corpora: YAML files listing programs,
// the targets to convert them to, and what each conversion must produce.
//
// # Corpus Format
//
//	name: fidelity
//	description: "Programs whose output must match across targets"
//	targets: [c, cpp, java]     # default for every case
//	cases:
//	  - name: assign_print
//	    source: |
//	      x = 5
//	      print(x)
//	    expect:
//	      stdout: "5\n"
//	      contains:
//	        c: ["int x = 5;"]
//	  - name: type_conflict
//	    source: |
//	      x = 1
//	      x = "s"
//	    expect:
//	      error: { kind: TypeError, code: E401 }
//
// # Checks
//
// Every case is converted once per target. A case passes when:
//   - the conversion fails with the expected error kind and code, or
//     succeeds when no error is expected
//   - the warning codes equal expect.warnings, when given
//   - the generated code contains every line listed for the target
//   - the code matches {name}_{target}.golden, when a golden directory is set
//   - the compiled program prints expect.stdout, when execution is enabled
//     and the target's toolchain is installed
//
// A missing toolchain skips the execution check instead of failing it.
//
// # Usage
//
//	corpus, err := harness.LoadCorpus("testdata/corpus/fidelity.yaml")
//	if err != nil {
//	    return err
//	}
//	report, err := harness.Run(ctx, corpus, harness.Options{Exec: true})
//	if err != nil {
//	    return err
//	}
//	if !report.Pass {
//	    for _, f := range report.Failures() {
//	        fmt.Println(f)
//	    }
//	}
package harness
