package security

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/kbukum/voicegate/security/tlstest"
)

func TestClientTLSBuild(t *testing.T) {
	certs := tlstest.Generate(t)

	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantNil bool
		wantErr bool
	}{
		{"nil", nil, true, false},
		{"zero", &TLSConfig{}, true, false},
		{"skip verify", &TLSConfig{SkipVerify: true}, false, false},
		{"ca", &TLSConfig{CAFile: certs.CAFile}, false, false},
		{"mtls", &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}, false, false},
		{"missing ca", &TLSConfig{CAFile: filepath.Join(t.TempDir(), "nope.pem")}, false, true},
		{"garbage ca", &TLSConfig{CAFile: tlstest.WriteGarbagePEM(t)}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Build()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != tt.wantNil {
				t.Fatalf("Build() = %v, wantNil %v", got, tt.wantNil)
			}
			if got != nil && got.MinVersion != tls.VersionTLS12 {
				t.Errorf("MinVersion = %x", got.MinVersion)
			}
		})
	}
}

func TestClientTLSValidate(t *testing.T) {
	if err := (&TLSConfig{CertFile: "c.pem"}).Validate(); err == nil {
		t.Error("expected error for cert without key")
	}
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Errorf("nil Validate() = %v", err)
	}
}

func TestServerTLSBuild(t *testing.T) {
	certs := tlstest.Generate(t)

	got, err := (&ServerTLSConfig{}).Build()
	if err != nil || got != nil {
		t.Fatalf("disabled Build() = %v, %v", got, err)
	}

	if _, err := (&ServerTLSConfig{Enabled: true}).Build(); err == nil {
		t.Error("expected error without a key pair")
	}

	got, err = (&ServerTLSConfig{Enabled: true, CertFile: certs.CertFile, KeyFile: certs.KeyFile}).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(got.Certificates) != 1 || got.ClientAuth != tls.NoClientCert {
		t.Errorf("Build() = %+v", got)
	}

	got, err = (&ServerTLSConfig{
		Enabled: true, CertFile: certs.CertFile, KeyFile: certs.KeyFile, ClientCAFile: certs.CAFile,
		MinVersion: tls.VersionTLS13,
	}).Build()
	if err != nil {
		t.Fatalf("Build() with client CA error = %v", err)
	}
	if got.ClientAuth != tls.RequireAndVerifyClientCert || got.MinVersion != tls.VersionTLS13 {
		t.Errorf("Build() = %+v", got)
	}
}
