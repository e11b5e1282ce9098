// devtoken emite un Bearer token firmado con la configuración actual (JWT_SECRET, JWT_ISSUER,
// JWT_EXPIRATION_MINUTES) para probar el API en local. La emisión real de tokens vive fuera
// de este servicio.
//
// Uso: go run ./cmd/devtoken <user_id> [admin|bodeguero|consulta]
// Por defecto el rol es admin.
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: devtoken <user_id> [admin|bodeguero|consulta]")
		os.Exit(2)
	}
	userID := os.Args[1]
	role := jwt.RoleAdmin
	if len(os.Args) > 2 {
		role = os.Args[2]
	}
	switch role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleConsulta:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido")
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
