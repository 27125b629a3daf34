package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
)

func setupTestDirectoryService() (DirectoryService, *mockBackend) {
	backend := newMockBackend()
	return NewDirectoryService(backend, zap.NewNop()), backend
}

func TestDirectoryListUsers_FilterAndPaginate(t *testing.T) {
	svc, backend := setupTestDirectoryService()
	backend.directory = []model.User{
		{ID: "1", Username: "dean", Role: model.RoleDean},
		{ID: "2", Username: "head.cs", FullName: "رئيس قسم الحاسوب", Role: model.RoleDepartmentHead},
		{ID: "3", Username: "head.math", Role: model.RoleDepartmentHead},
		{ID: "4", Username: "sup1", Role: model.RoleSupervisor},
	}

	list, total, err := svc.ListUsers(context.Background(), deanSession(), &dto.UserListRequest{Role: "department_head"})
	if err != nil {
		t.Fatalf("ListUsers 应成功: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("期望 2 位系主任，实际 total=%d len=%d", total, len(list))
	}

	req := &dto.UserListRequest{Keyword: "HEAD"}
	req.PageSize = 1
	list, total, _ = svc.ListUsers(context.Background(), deanSession(), req)
	if total != 2 || len(list) != 1 {
		t.Errorf("期望关键字不区分大小写且分页生效，实际 total=%d len=%d", total, len(list))
	}
}

func TestDirectoryDeleteUser_Self(t *testing.T) {
	svc, _ := setupTestDirectoryService()

	err := svc.DeleteUser(context.Background(), deanSession(), "1")
	if !errors.Is(err, ErrCannotDeleteSelf) {
		t.Errorf("期望 ErrCannotDeleteSelf，实际: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), deanSession(), "2"); err != nil {
		t.Errorf("删除他人应成功: %v", err)
	}
}

func TestDirectoryCreateUser(t *testing.T) {
	svc, backend := setupTestDirectoryService()

	u, err := svc.CreateUser(context.Background(), deanSession(), &dto.CreateUserRequest{
		Username: " head.phys ",
		Password: "password123",
		FullName: "رئيس قسم الفيزياء",
		Role:     "department_head",
	})
	if err != nil {
		t.Fatalf("CreateUser 应成功: %v", err)
	}
	if u.Username != "head.phys" || u.Role != model.RoleDepartmentHead {
		t.Errorf("用户信息不正确: %+v", u)
	}
	if len(backend.directory) != 1 {
		t.Errorf("期望后端新增 1 位用户，实际 %d", len(backend.directory))
	}
}

func TestDirectoryDepartmentsAndSupervisors(t *testing.T) {
	svc, _ := setupTestDirectoryService()

	dept, err := svc.CreateDepartment(context.Background(), deanSession(), &dto.DepartmentRequest{Name: " علوم الحاسوب ", Code: "CS"})
	if err != nil || dept.Name != "علوم الحاسوب" {
		t.Errorf("CreateDepartment 结果不正确: %+v, %v", dept, err)
	}
	list, _ := svc.ListDepartments(context.Background(), deanSession())
	if len(list) != 1 {
		t.Errorf("期望 1 个院系，实际 %d", len(list))
	}

	sup, err := svc.CreateSupervisor(context.Background(), headSession("10"), &dto.SupervisorRequest{
		Username: "sup.cs", Password: "password123", FullName: "مشرف",
	})
	if err != nil || sup.Role != model.RoleSupervisor {
		t.Errorf("CreateSupervisor 结果不正确: %+v, %v", sup, err)
	}
}
