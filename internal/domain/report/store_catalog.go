package report

import "context"

func (s *Store) ListCatalog(ctx context.Context) ([]Action, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, default_daily_target, sort_order
    FROM action_catalog
    ORDER BY sort_order
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Name, &a.DefaultDailyTarget, &a.SortOrder); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (s *Store) Action(ctx context.Context, actionID int) (Action, error) {
	var a Action
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, default_daily_target, sort_order
    FROM action_catalog
    WHERE id = $1
  `, actionID).Scan(&a.ID, &a.Name, &a.DefaultDailyTarget, &a.SortOrder)
	return a, err
}

func (s *Store) Profile(ctx context.Context, profileID string) (Profile, error) {
	var p Profile
	err := s.DB.QueryRow(ctx, `
    SELECT id, full_name, role, manager_id, created_at
    FROM profiles
    WHERE id = $1
  `, profileID).Scan(&p.ID, &p.FullName, &p.Role, &p.ManagerID, &p.CreatedAt)
	return p, err
}

func (s *Store) TeamProfiles(ctx context.Context, managerID string) ([]Profile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, full_name, role, manager_id, created_at
    FROM profiles
    WHERE manager_id = $1
    ORDER BY full_name
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.Role, &p.ManagerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
