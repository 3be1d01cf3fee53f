package platform

import (
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/resources/ec2"
	"github.com/nordforge/eksblueprint/resources/iam"
	"github.com/nordforge/eksblueprint/resources/k8s"
	"github.com/nordforge/eksblueprint/stack"
)

// PolicySourceTag records where a role's permission policy was loaded from.
// The lint rules warn when it points at a remote URL.
const PolicySourceTag = "eksblueprint:policy-source"

// Add-on chart and release constants.
const (
	autoscalerChartVersion   = "9.9.2"
	autoscalerRepository     = "https://kubernetes.github.io/autoscaler"
	lbControllerName         = "aws-load-balancer-controller"
	lbControllerChartVersion = "1.2.3"
	lbControllerRepository   = "https://aws.github.io/eks-charts"
)

// expanderPriorities prefers on-demand pools over spot pools when the
// autoscaler picks a pool to grow.
const expanderPriorities = "10: \n  - \n  - od*\n20: \n  - spot*"

// addAddons declares the cluster add-ons. The agent daemonset goes in
// first; every other add-on is ordered after it.
func addAddons(s *stack.Stack, p ClusterParams) error {
	if err := addAgentDaemonSet(s, p); err != nil {
		return err
	}
	if err := addBastion(s, p); err != nil {
		return err
	}
	if p.Options.DeployClusterAutoscaler {
		if err := addClusterAutoscaler(s, p); err != nil {
			return err
		}
	}
	if p.Options.DeployLoadBalancerController {
		if err := addLoadBalancerController(s, p); err != nil {
			return err
		}
	}
	return nil
}

// addAgentDaemonSet installs the session agent on every node via a cron
// dropped by a privileged daemonset.
func addAgentDaemonSet(s *stack.Stack, p ClusterParams) error {
	manifest, err := k8s.RenderManifest(agentDaemonSet())
	if err != nil {
		return fmt.Errorf("rendering agent daemonset: %w", err)
	}

	s.Add("AgentDaemonSet", k8s.Manifest{
		ClusterName: p.ComposedClusterName(),
		Manifest:    manifest,
	}, "Cluster")

	return nil
}

func agentDaemonSet() appsv1.DaemonSet {
	labels := map[string]string{"k8s-app": "ssm-installer"}
	installCron := "echo '* * * * * root yum install -y https://s3.amazonaws.com/ec2-downloads-windows/SSMAgent/latest/linux_amd64/amazon-ssm-agent.rpm & rm -rf /etc/cron.d/ssmstart' > /etc/cron.d/ssmstart"

	return appsv1.DaemonSet{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "DaemonSet"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      "ssm-installer",
			Namespace: "kube-system",
			Labels:    labels,
		},
		Spec: appsv1.DaemonSetSpec{
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:            "ssm",
						Image:           "amazonlinux",
						ImagePullPolicy: corev1.PullAlways,
						Command:         []string{"/bin/bash"},
						Args:            []string{"-c", installCron},
						SecurityContext: &corev1.SecurityContext{
							AllowPrivilegeEscalation: intrinsics.BoolPtr(true),
						},
						VolumeMounts: []corev1.VolumeMount{{
							MountPath: "/etc/cron.d",
							Name:      "cronfile",
						}},
						TerminationMessagePath:   "/dev/termination-log",
						TerminationMessagePolicy: corev1.TerminationMessageReadFile,
					}},
					Volumes: []corev1.Volume{{
						Name: "cronfile",
						VolumeSource: corev1.VolumeSource{
							HostPath: &corev1.HostPathVolumeSource{
								Path: "/etc/cron.d",
								Type: hostPathType(corev1.HostPathDirectory),
							},
						},
					}},
					DNSPolicy:                     corev1.DNSClusterFirst,
					RestartPolicy:                 corev1.RestartPolicyAlways,
					SchedulerName:                 "default-scheduler",
					TerminationGracePeriodSeconds: int64Ptr(30),
				},
			},
		},
	}
}

// addClusterAutoscaler installs the autoscaling controller with a priority
// expander, plus an identity allowed to manage scaling group state.
func addClusterAutoscaler(s *stack.Stack, p ClusterParams) error {
	s.Add("AutoscalerRole", iam.Role{
		AssumeRolePolicyDocument: assumedByRootAndEC2(),
		Policies: intrinsics.Any(iam.Role_Policy{
			PolicyName: "cluster-autoscaler",
			PolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
				Effect: "Allow",
				Action: intrinsics.Any(
					"autoscaling:DescribeAutoScalingGroups",
					"autoscaling:DescribeAutoScalingInstances",
					"autoscaling:DescribeLaunchConfigurations",
					"autoscaling:DescribeTags",
					"autoscaling:SetDesiredCapacity",
					"autoscaling:TerminateInstanceInAutoScalingGroup",
					"ec2:DescribeLaunchTemplateVersions",
				),
				Resource: "*",
			}),
		}),
	})

	expander, err := k8s.RenderManifest(expanderConfigMap())
	if err != nil {
		return fmt.Errorf("rendering expander config: %w", err)
	}
	s.Add("ExpanderConfig", k8s.Manifest{
		ClusterName: p.ComposedClusterName(),
		Manifest:    expander,
	}, "Cluster", "AgentDaemonSet")

	s.Add("AutoscalerChart", k8s.HelmChart{
		ClusterName: p.ComposedClusterName(),
		Chart:       "cluster-autoscaler",
		Version:     autoscalerChartVersion,
		Release:     "cluster-autoscaler",
		Repository:  autoscalerRepository,
		Namespace:   "kube-system",
		Values: intrinsics.Json{
			"autoDiscovery": intrinsics.Json{
				"clusterName": p.ComposedClusterName(),
			},
			"awsRegion": p.Config.Region,
			"resources": intrinsics.Json{
				"requests": intrinsics.Json{"cpu": "1", "memory": "512Mi"},
				"limits":   intrinsics.Json{"cpu": "1", "memory": "512Mi"},
			},
			"rbac": intrinsics.Json{
				"serviceAccount": intrinsics.Json{
					"create": false,
					"name":   "cluster-autoscaler",
				},
			},
			"extraArgs": intrinsics.Json{
				"expander":                "priority",
				"max-node-provision-time": "5m0s",
			},
			"replicaCount": 1,
		},
	}, "Cluster", "AgentDaemonSet", "ExpanderConfig", "AutoscalerRole")

	return nil
}

func expanderConfigMap() corev1.ConfigMap {
	return corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      "cluster-autoscaler-priority-expander",
			Namespace: "kube-system",
		},
		Data: map[string]string{
			"priorities": expanderPriorities,
		},
	}
}

// addLoadBalancerController installs the load balancing controller. Its
// permission policy arrives in ClusterParams, already fetched or loaded,
// with its source recorded on the role for the lint rules.
func addLoadBalancerController(s *stack.Stack, p ClusterParams) error {
	var tags []any
	if p.LBControllerPolicySource != "" {
		tags = intrinsics.Any(intrinsics.Tag{
			Key:   PolicySourceTag,
			Value: p.LBControllerPolicySource,
		})
	}

	s.Add("LbControllerRole", iam.Role{
		AssumeRolePolicyDocument: assumedByRootAndEC2(),
		Policies: intrinsics.Any(iam.Role_Policy{
			PolicyName:     lbControllerName,
			PolicyDocument: p.LBControllerPolicy,
		}),
		Tags: tags,
	})

	s.Add("LbControllerChart", k8s.HelmChart{
		ClusterName: p.ComposedClusterName(),
		Chart:       lbControllerName,
		Version:     lbControllerChartVersion,
		Release:     "aws-lb-controller",
		Repository:  lbControllerRepository,
		Namespace:   "kube-system",
		Values: intrinsics.Json{
			"clusterName": p.ComposedClusterName(),
			"region":      p.Config.Region,
			"vpcId":       p.Network.VpcID(),
			"serviceAccount": intrinsics.Json{
				"create": false,
				"name":   lbControllerName,
			},
			"replicaCount": 2,
		},
	}, "Cluster", "AgentDaemonSet", "LbControllerRole")

	return nil
}

// addBastion declares the administrative bastion: public placement, the
// admin role via an instance profile, and a bootstrap script that installs
// an editor server, the cluster CLI, and the GitOps agent.
func addBastion(s *stack.Stack, p ClusterParams) error {
	s.Add("AdminInstanceProfile", iam.InstanceProfile{
		Roles: intrinsics.Any(intrinsics.Ref{LogicalName: "ClusterAdminRole"}),
	}, "ClusterAdminRole")

	s.Add("BastionSecurityGroup", ec2.SecurityGroup{
		GroupDescription: "Bastion editor UI access",
		VpcId:            p.Network.VpcID(),
	})
	s.Add("BastionEditorIngress", ec2.SecurityGroupIngress{
		GroupId:     intrinsics.GetAtt{LogicalName: "BastionSecurityGroup", Attribute: "GroupId"},
		CidrIp:      "0.0.0.0/0",
		IpProtocol:  "tcp",
		FromPort:    intrinsics.IntPtr(8080),
		ToPort:      intrinsics.IntPtr(8080),
		Description: "Editor web UI",
	}, "BastionSecurityGroup")

	// The bastion talks to the control plane directly.
	s.Add("ControlPlaneFromBastion", ec2.SecurityGroupIngress{
		GroupId:               intrinsics.GetAtt{LogicalName: "ControlPlaneSecurityGroup", Attribute: "GroupId"},
		SourceSecurityGroupId: intrinsics.GetAtt{LogicalName: "BastionSecurityGroup", Attribute: "GroupId"},
		IpProtocol:            "-1",
		Description:           "All traffic from the bastion",
	}, "ControlPlaneSecurityGroup", "BastionSecurityGroup")

	s.Add("Bastion", ec2.Instance{
		InstanceType:       "t3.large",
		ImageId:            "{{resolve:ssm:/aws/service/ami-amazon-linux-latest/amzn2-ami-hvm-x86_64-gp2}}",
		IamInstanceProfile: intrinsics.Ref{LogicalName: "AdminInstanceProfile"},
		SubnetId:           p.Network.SubnetIDs(SubnetGroupPublic)[0],
		SecurityGroupIds: intrinsics.Any(
			intrinsics.GetAtt{LogicalName: "BastionSecurityGroup", Attribute: "GroupId"},
		),
		BlockDeviceMappings: intrinsics.Any(ec2.BlockDeviceMapping{
			DeviceName: "/dev/xvda",
			Ebs:        ec2.Ebs{VolumeSize: 20, VolumeType: "gp2"},
		}),
		UserData: intrinsics.Base64{Value: bastionUserData(p)},
		Tags: intrinsics.Any(intrinsics.Tag{
			Key:   "Name",
			Value: p.ComposedClusterName() + "-bastion",
		}),
	}, "AdminInstanceProfile", "BastionSecurityGroup", "AgentDaemonSet")

	s.SetOutput("BastionAddress", eksblueprint.Output{
		Description: "Address to reach your Bastion's VS Code Web UI",
		Value:       intrinsics.Sub{String: "http://${Bastion.PublicIp}:8080"},
	})

	return nil
}

// bastionUserData builds the bastion bootstrap script: code-server, the
// cluster CLI, and a one-time GitOps repository bootstrap driven by two
// secrets read at boot time.
func bastionUserData(p ClusterParams) string {
	clusterName := p.ComposedClusterName()
	region := p.Config.Region

	commands := []string{
		"#!/bin/bash",
		"yum -y install perl-Digest-SHA",
		"mkdir -p ~/.local/lib ~/.local/bin ~/.config/code-server",
		"curl -fL https://github.com/cdr/code-server/releases/download/v3.9.1/code-server-3.9.1-linux-amd64.tar.gz | tar -C ~/.local/lib -xz",
		"mv ~/.local/lib/code-server-3.9.1-linux-amd64 ~/.local/lib/code-server-3.9.1",
		"ln -s ~/.local/lib/code-server-3.9.1/bin/code-server ~/.local/bin/code-server",
		`echo "bind-addr: 0.0.0.0:8080" > ~/.config/code-server/config.yaml`,
		`echo "auth: password" >> ~/.config/code-server/config.yaml`,
		`echo "password: $(curl -s http://169.254.169.254/latest/meta-data/instance-id)" >> ~/.config/code-server/config.yaml`,
		`echo "cert: false" >> ~/.config/code-server/config.yaml`,
		"~/.local/bin/code-server &",
		`echo "/root/.local/bin/code-server &" >> /etc/rc.d/rc.local`,
		"chmod a+x /etc/rc.d/rc.local",
		"curl -o kubectl https://amazon-eks.s3.us-west-2.amazonaws.com/1.19.6/2021-01-05/bin/linux/amd64/kubectl",
		"chmod +x ./kubectl",
		"mv ./kubectl /usr/bin",
		fmt.Sprintf("aws eks update-kubeconfig --name %s --region %s", clusterName, region),
		"PATH=$PATH:/usr/local/bin",
		"export KUBECONFIG=~/.kube/config",
		"curl -s https://fluxcd.io/install.sh | sudo bash",
		"echo 'PATH=$PATH:/usr/local/bin' >> ~/.bash_profile",
		"echo '. <(flux completion bash)' >> ~/.bash_profile",
		fmt.Sprintf("export GITHUB_TOKEN=$(aws --region %s secretsmanager get-secret-value --secret-id github-token --query 'SecretString' --output text)", region),
		fmt.Sprintf("export GITHUB_USER=$(aws --region %s secretsmanager get-secret-value --secret-id github-user --query 'SecretString' --output text)", region),
		fmt.Sprintf("KUBECONFIG=~/.kube/config flux bootstrap github --owner=$GITHUB_USER --repository=flux-system-eks --path=clusters/%s --personal", clusterName),
	}

	return strings.Join(commands, "\n") + "\n"
}

func int64Ptr(i int64) *int64 { return &i }

func hostPathType(t corev1.HostPathType) *corev1.HostPathType { return &t }
