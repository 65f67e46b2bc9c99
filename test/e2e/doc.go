/*
Package main provides the end-to-end tests of virt-harness: the checkpoint
suites run against real libguestfs, libvirt and virt-v2v tools.

# Package Structure

	test/e2e/
	├── main.go      Entry point: flags, config, InfraManager setup, Ginkgo runner
	├── tests.go     Ginkgo test specs (guestfish session, augeas, dispatcher, virsh, v2v)
	├── doc.go       This file
	└── infra/
	    ├── infra.go InfraManager interface + Config + tool names
	    ├── host.go  HostInfraManager (tools found on PATH)
	    └── fake.go  FakeInfraManager (scripted tools from package test)

# InfraManager

InfraManager decides which binaries the suites drive:

	type InfraManager interface {
	    Env() (*checkpoint.Env, error)
	    Available(tool string) bool
	    Cleanup() error
	}

Two implementations:
  - HostInfraManager looks the tools up on PATH (default). Tests needing a
    missing tool are skipped, so the suite runs on hosts with only guestfish.
  - FakeInfraManager uses the shell scripts of the unit tests. It checks the
    suite itself without any virtualization stack.

Selected via the -infra-mode flag ("host" or "fake").

The virsh tests use the libvirt test driver (test:///default) unless
-virsh-uri says otherwise; start_destroy needs an existing shut off domain
given with -domain.

# Running

	go run ./test/e2e -infra-mode fake
	go run ./test/e2e -backend direct -keep-work-dir
*/
package main
