package database

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS usuarios (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    login TEXT UNIQUE NOT NULL,
    password_hash BYTEA NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS avisos (
    id BIGSERIAL PRIMARY KEY,
    orden_interna TEXT NOT NULL UNIQUE,
    cliente TEXT,
    direccion TEXT,
    localidad TEXT,
    codigo_postal TEXT,
    telefono1 TEXT,
    telefono2 TEXT,
    aparato TEXT,
    marca TEXT,
    modelo TEXT,
    fecha_asignacion TEXT,
    averia TEXT,
    tipo_servicio TEXT,
    con_cargo BOOLEAN DEFAULT FALSE,
    importe NUMERIC(10,2),
    metodo_pago TEXT,
    observaciones_cobro TEXT,
    estado TEXT,
    fecha_visita TEXT,
    tecnico TEXT,
    turno TEXT,
    proveedor TEXT,
    estado_cita TEXT,
    tipo_operacion TEXT,
    hora_inicio TEXT,
    hora_fin TEXT
);

CREATE INDEX IF NOT EXISTS idx_avisos_fecha_visita ON avisos(fecha_visita);
CREATE INDEX IF NOT EXISTS idx_avisos_estado ON avisos(estado);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
