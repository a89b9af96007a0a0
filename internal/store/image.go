package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Export returns the binary image of the main database.
func (e *Engine) Export(ctx context.Context) ([]byte, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: acquire conn: %w", err)
	}
	defer conn.Close()

	var image []byte
	err = conn.Raw(func(driverConn any) error {
		sc, err := sqliteConn(driverConn)
		if err != nil {
			return err
		}
		image, err = sc.Serialize("main")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export: serialize: %w", err)
	}
	return image, nil
}

// restore replaces the engine's main database with image.
//
// sqlite3_deserialize as exposed by the driver yields a database that cannot
// grow, so the image is first deserialized into a scratch connection,
// integrity-checked there, and then copied into the engine with the online
// backup API.
func (e *Engine) restore(ctx context.Context, image []byte) error {
	if len(image) == 0 {
		return errors.New("restore: empty image")
	}

	scratch, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("restore: open scratch: %w", err)
	}
	defer scratch.Close()
	scratch.SetMaxOpenConns(1)

	src, err := scratch.Conn(ctx)
	if err != nil {
		return fmt.Errorf("restore: acquire scratch conn: %w", err)
	}
	defer src.Close()

	err = src.Raw(func(driverConn any) error {
		sc, err := sqliteConn(driverConn)
		if err != nil {
			return err
		}
		return sc.Deserialize(image, "main")
	})
	if err != nil {
		return fmt.Errorf("restore: deserialize: %w", err)
	}

	var verdict string
	if err := src.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&verdict); err != nil {
		return fmt.Errorf("restore: check image: %w", err)
	}
	if verdict != "ok" {
		return fmt.Errorf("restore: image failed integrity check: %s", verdict)
	}

	dst, err := e.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("restore: acquire engine conn: %w", err)
	}
	defer dst.Close()

	return dst.Raw(func(dstDriver any) error {
		dstConn, err := sqliteConn(dstDriver)
		if err != nil {
			return err
		}
		return src.Raw(func(srcDriver any) error {
			srcConn, err := sqliteConn(srcDriver)
			if err != nil {
				return err
			}
			return copyDatabase(dstConn, srcConn)
		})
	})
}

func copyDatabase(dst, src *sqlite3.SQLiteConn) error {
	backup, err := dst.Backup("main", src, "main")
	if err != nil {
		return fmt.Errorf("restore: start backup: %w", err)
	}
	done, err := backup.Step(-1)
	if err != nil {
		backup.Finish()
		return fmt.Errorf("restore: backup step: %w", err)
	}
	if !done {
		backup.Finish()
		return errors.New("restore: backup did not complete")
	}
	if err := backup.Finish(); err != nil {
		return fmt.Errorf("restore: finish backup: %w", err)
	}
	return nil
}

func sqliteConn(driverConn any) (*sqlite3.SQLiteConn, error) {
	sc, ok := driverConn.(*sqlite3.SQLiteConn)
	if !ok {
		return nil, fmt.Errorf("unexpected driver connection %T", driverConn)
	}
	return sc, nil
}
