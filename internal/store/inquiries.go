package store

import (
	"context"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
)

func (s *Store) InsertInquiry(ctx context.Context, q rental.Inquiry) (int64, error) {
	if q.Status == "" {
		q.Status = rental.InquiryNew
	}
	var id int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO contact_inquiries (name, email, phone, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		q.Name, q.Email, q.Phone, q.Subject, q.Message, string(q.Status)).Scan(&id)
	return id, mapErr(err, "inquiry from", q.Email)
}

func (s *Store) ListInquiries(ctx context.Context, status *rental.InquiryStatus) ([]rental.Inquiry, error) {
	sql := `SELECT id, name, email, phone, subject, message, status, created_at FROM contact_inquiries`
	var args []any
	if status != nil {
		sql += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	sql += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rental.Inquiry{}
	for rows.Next() {
		var q rental.Inquiry
		var st string
		if err := rows.Scan(&q.ID, &q.Name, &q.Email, &q.Phone, &q.Subject, &q.Message, &st, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.Status = rental.InquiryStatus(st)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) CountInquiries(ctx context.Context) (rental.InquiryCounts, error) {
	var c rental.InquiryCounts
	err := s.q(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'new'),
		       COUNT(*) FILTER (WHERE status = 'read'),
		       COUNT(*) FILTER (WHERE status = 'replied')
		FROM contact_inquiries`).Scan(&c.Total, &c.New, &c.Read, &c.Replied)
	return c, err
}

func (s *Store) SetInquiryStatus(ctx context.Context, id int64, st rental.InquiryStatus) error {
	tag, err := s.q(ctx).Exec(ctx, `UPDATE contact_inquiries SET status = $2 WHERE id = $1`, id, string(st))
	if err != nil {
		return mapErr(err, "inquiry", id)
	}
	return expectOne(tag, "inquiry", id)
}

func (s *Store) DeleteInquiry(ctx context.Context, id int64) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM contact_inquiries WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "inquiry", id)
	}
	return expectOne(tag, "inquiry", id)
}
