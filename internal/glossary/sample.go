package glossary

import "github.com/hyperjump/kotoba/internal/models"

// SampleTerms returns a small English to Chinese technology glossary, used
// when no glossary file is at hand.
func SampleTerms() []models.Term {
	return []models.Term{
		{Word: "artificial intelligence (AI)", Definition: "人工智能：由人制造出来的机器所表现出来的智能"},
		{Word: "machine learning", Definition: "机器学习：人工智能的一个分支，指通过经验自动改进的计算机算法"},
		{Word: "deep learning", Definition: "深度学习：机器学习的一个分支，基于具有多层结构的人工神经网络"},
		{Word: "natural language processing (NLP)", Definition: "自然语言处理：研究人与计算机之间用自然语言进行有效通信的理论和方法"},
		{Word: "computer vision", Definition: "计算机视觉：使计算机能够理解和解释图像或视频数据"},
		{Word: "big data", Definition: "大数据：规模巨大到无法用传统数据库工具处理的数据集合"},
		{Word: "cloud computing", Definition: "云计算：基于互联网的计算方式，共享的软硬件资源可以按需提供给计算机和其他设备"},
		{Word: "blockchain", Definition: "区块链：通过密码学方法确保数据不可篡改和不可伪造的分布式账本技术"},
		{Word: "internet of things (IoT)", Definition: "物联网：通过各种信息传感设备与技术实时采集需要监控、连接、互动的物体或过程"},
		{Word: "augmented reality (AR)", Definition: "增强现实：实时计算摄影机影像的位置及角度并叠加相应图像、视频、3D模型的技术"},
		{Word: "virtual reality (VR)", Definition: "虚拟现实：可以创建和体验虚拟世界的计算机仿真系统"},
		{Word: "quantum computing", Definition: "量子计算：遵循量子力学规律调控量子信息单元进行计算的新型计算模式"},
		{Word: "data mining", Definition: "数据挖掘：从大量数据中通过算法搜索隐藏信息的过程"},
		{Word: "algorithm", Definition: "算法：解题方案的准确而完整的描述，是一系列解决问题的清晰指令"},
		{Word: "neural network", Definition: "神经网络：模仿动物神经网络行为特征进行分布式并行信息处理的数学模型"},
		{Word: "model", Definition: "模型：在机器学习中，通过训练数据学习到的参数和结构，用于预测或分类新数据"},
		{Word: "training", Definition: "训练：提供输入数据和期望输出，让模型学习如何进行预测或分类"},
		{Word: "testing", Definition: "测试：使用未用于训练的数据集评估模型的性能"},
		{Word: "validation", Definition: "验证：在训练过程中使用一部分数据评估模型的性能，用于调整超参数"},
		{Word: "accuracy", Definition: "准确率：模型预测正确的样本数占总样本数的比例"},
	}
}
